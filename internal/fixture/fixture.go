// Package fixture supplies the baseline review tree: an embedded dataset, an
// HTTP server that serves it the way the production API would, and a client
// for fetching it back.
package fixture

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed processes.json
var embedded []byte

// Dataset is the on-disk fixture layout.
type Dataset struct {
	Processes []domain.Process `json:"processes" yaml:"processes"`
}

// Embedded returns a fresh copy of the built-in dataset.
func Embedded() ([]domain.Process, error) {
	return Parse(embedded, FormatJSON)
}

// Format of a fixture file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file extension. Anything other than .yaml
// or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads a dataset from path.
func LoadFile(path string) ([]domain.Process, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	procs, err := Parse(b, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return procs, nil
}

// Parse decodes a dataset. Both a {"processes": [...]} document and a bare
// process list are accepted.
func Parse(b []byte, format Format) ([]domain.Process, error) {
	var ds Dataset
	switch format {
	case FormatYAML:
		if err := decodeYAML(b, &ds); err != nil {
			return nil, err
		}
	default:
		trimmed := bytes.TrimSpace(b)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &ds.Processes); err != nil {
				return nil, fmt.Errorf("decoding fixture json: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &ds); err != nil {
			return nil, fmt.Errorf("decoding fixture json: %w", err)
		}
	}
	if err := validate(ds.Processes); err != nil {
		return nil, err
	}
	return ds.Processes, nil
}

func decodeYAML(b []byte, ds *Dataset) error {
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return fmt.Errorf("decoding fixture yaml: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&ds.Processes); err != nil {
			return fmt.Errorf("decoding fixture yaml: %w", err)
		}
		return nil
	}
	if err := node.Decode(ds); err != nil {
		return fmt.Errorf("decoding fixture yaml: %w", err)
	}
	return nil
}

// validate checks ids are present and unique within their parent and that
// statuses are known. Missing statuses default to Pending.
func validate(procs []domain.Process) error {
	seen := make(map[string]bool, len(procs))
	for i := range procs {
		p := &procs[i]
		if err := checkNode("process", p.ID, &p.Status, seen); err != nil {
			return err
		}
		subs := make(map[string]bool, len(p.Subprocesses))
		for j := range p.Subprocesses {
			s := &p.Subprocesses[j]
			if err := checkNode("subprocess", s.ID, &s.Status, subs); err != nil {
				return fmt.Errorf("process %s: %w", p.ID, err)
			}
			tasks := make(map[string]bool, len(s.Tasks))
			for k := range s.Tasks {
				t := &s.Tasks[k]
				if err := checkNode("task", t.ID, &t.Status, tasks); err != nil {
					return fmt.Errorf("subprocess %s: %w", s.ID, err)
				}
				normalize(&t.Comments)
			}
			normalize(&s.Comments)
			if s.Tasks == nil {
				s.Tasks = []domain.Task{}
			}
		}
		normalize(&p.Comments)
		if p.Subprocesses == nil {
			p.Subprocesses = []domain.Subprocess{}
		}
	}
	return nil
}

func checkNode(kind, id string, status *domain.Status, seen map[string]bool) error {
	if id == "" {
		return fmt.Errorf("%s with empty id", kind)
	}
	if seen[id] {
		return fmt.Errorf("duplicate %s id %q", kind, id)
	}
	seen[id] = true
	if *status == "" {
		*status = domain.StatusPending
		return nil
	}
	if !status.Valid() {
		return fmt.Errorf("%s %s: invalid status %q", kind, id, *status)
	}
	return nil
}

func normalize(cs *[]domain.Comment) {
	if *cs == nil {
		*cs = []domain.Comment{}
	}
}

// EmbeddedSource serves a dataset in-process, optionally with the same
// artificial latency the server applies.
type EmbeddedSource struct {
	Processes []domain.Process
	Latency   time.Duration
}

// NewEmbeddedSource wraps the built-in dataset.
func NewEmbeddedSource(latency time.Duration) (*EmbeddedSource, error) {
	procs, err := Embedded()
	if err != nil {
		return nil, err
	}
	return &EmbeddedSource{Processes: procs, Latency: latency}, nil
}

// FetchProcesses returns a deep copy of the dataset after the configured
// latency.
func (s *EmbeddedSource) FetchProcesses(ctx context.Context) ([]domain.Process, error) {
	if err := wait(ctx, s.Latency); err != nil {
		return nil, err
	}
	return domain.CloneProcesses(s.Processes), nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
