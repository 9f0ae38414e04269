// Package config resolves procreview settings from defaults, an optional
// YAML config file, PROCREVIEW_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "PROCREVIEW"

// Config keys.
const (
	KeyDB           = "db"
	KeyStore        = "store"
	KeySnapshotFile = "snapshot_file"
	KeyAPIURL       = "api_url"
	KeyActor        = "actor"
	KeyLatencyMs    = "latency_ms"
	KeyListen       = "listen"
	KeyFixture      = "fixture"
	KeyLog          = "log"
	KeyPageLines    = "page_lines"
)

// Config holds resolved settings.
type Config struct {
	DBPath       string
	Store        string
	SnapshotFile string
	// APIURL is the baseline API; empty means the embedded dataset.
	APIURL    string
	Actor     domain.Actor
	LatencyMs int
	Listen    string
	Fixture   string
	Log       bool
	PageLines int

	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

// Latency returns LatencyMs as a duration.
func (c Config) Latency() time.Duration {
	return time.Duration(c.LatencyMs) * time.Millisecond
}

// Dir returns the per-user state directory (~/.procreview).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".procreview"
	}
	return filepath.Join(home, ".procreview")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	dir := Dir()
	return Config{
		DBPath:       filepath.Join(dir, "procreview.db"),
		Store:        "sqlite",
		SnapshotFile: filepath.Join(dir, "state.json"),
		Actor:        domain.DefaultActor,
		LatencyMs:    500,
		Listen:       ":8080",
		PageLines:    50,
	}
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"db":            KeyDB,
	"store":         KeyStore,
	"snapshot-file": KeySnapshotFile,
	"api-url":       KeyAPIURL,
	"actor":         KeyActor,
	"log":           KeyLog,
	"latency":       KeyLatencyMs,
	"listen":        KeyListen,
	"fixture":       KeyFixture,
	"page-lines":    KeyPageLines,
}

// Loader wraps a viper instance configured for procreview.
type Loader struct {
	v *viper.Viper
}

// NewLoader registers defaults and environment handling.
func NewLoader() *Loader {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault(KeyDB, d.DBPath)
	v.SetDefault(KeyStore, d.Store)
	v.SetDefault(KeySnapshotFile, d.SnapshotFile)
	v.SetDefault(KeyAPIURL, d.APIURL)
	v.SetDefault(KeyActor, string(d.Actor))
	v.SetDefault(KeyLatencyMs, d.LatencyMs)
	v.SetDefault(KeyListen, d.Listen)
	v.SetDefault(KeyFixture, d.Fixture)
	v.SetDefault(KeyLog, d.Log)
	v.SetDefault(KeyPageLines, d.PageLines)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlags binds every known flag present in fs. Only flags the user set
// override lower layers.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("binding flag --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Set forces a value, above every other layer.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load reads the config file and resolves all layers. An explicit path must
// exist; without one ~/.procreview/config.yaml is used when present.
func (l *Loader) Load(path string) (Config, error) {
	l.v.SetConfigType("yaml")
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		l.v.SetConfigName("config")
		l.v.AddConfigPath(Dir())
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := Config{
		DBPath:       l.v.GetString(KeyDB),
		Store:        strings.ToLower(strings.TrimSpace(l.v.GetString(KeyStore))),
		SnapshotFile: l.v.GetString(KeySnapshotFile),
		APIURL:       strings.TrimSpace(l.v.GetString(KeyAPIURL)),
		Actor:        domain.Actor(strings.TrimSpace(l.v.GetString(KeyActor))),
		LatencyMs:    l.v.GetInt(KeyLatencyMs),
		Listen:       l.v.GetString(KeyListen),
		Fixture:      l.v.GetString(KeyFixture),
		Log:          l.v.GetBool(KeyLog),
		PageLines:    l.v.GetInt(KeyPageLines),
		ConfigFile:   l.v.ConfigFileUsed(),
	}
	if cfg.Actor == "" {
		cfg.Actor = domain.DefaultActor
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.Store {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("config: %s is empty", KeyDB)
		}
	case "file":
		if c.SnapshotFile == "" {
			return fmt.Errorf("config: %s is empty", KeySnapshotFile)
		}
	case "memory":
	default:
		return fmt.Errorf("config: invalid %s %q (want sqlite, file or memory)", KeyStore, c.Store)
	}
	if c.LatencyMs < 0 {
		return fmt.Errorf("config: %s must not be negative", KeyLatencyMs)
	}
	if c.PageLines <= 0 {
		return fmt.Errorf("config: %s must be positive", KeyPageLines)
	}
	return nil
}
