package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
)

const timeLayout = time.RFC3339Nano

func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

func encodeSnapshot(s *domain.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("encoding snapshot: nil snapshot")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return b, nil
}

// decodeSnapshot rejects payloads that are not a JSON object carrying a
// processes list.
func decodeSnapshot(b []byte) (*domain.Snapshot, error) {
	var probe struct {
		Processes json.RawMessage `json:"processes"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if len(probe.Processes) == 0 || string(probe.Processes) == "null" {
		return nil, fmt.Errorf("%w: missing processes", ErrCorruptSnapshot)
	}
	var s domain.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &s, nil
}
