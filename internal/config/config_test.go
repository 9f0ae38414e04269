package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir so a developer's real config is never read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"DB", "STORE", "SNAPSHOT_FILE", "API_URL", "ACTOR", "LATENCY_MS", "LISTEN", "FIXTURE", "LOG", "PAGE_LINES"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		os.Unsetenv(EnvPrefix + "_" + k)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".procreview", "procreview.db"), cfg.DBPath)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, domain.DefaultActor, cfg.Actor)
	assert.Equal(t, 500*time.Millisecond, cfg.Latency())
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 50, cfg.PageLines)
	assert.Empty(t, cfg.APIURL)
	assert.False(t, cfg.Log)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_HomeConfigFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".procreview")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("actor: QA Lead\nstore: memory\nlatency_ms: 0\n"), 0o644))

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.Actor("QA Lead"), cfg.Actor)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 0, cfg.LatencyMs)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actor: From File\napi_url: http://file\npage_lines: 20\n"), 0o644))
	t.Setenv("PROCREVIEW_ACTOR", "From Env")
	t.Setenv("PROCREVIEW_PAGE_LINES", "30")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("actor", "", "")
	fs.String("api-url", "", "")
	fs.String("unrelated", "", "")
	require.NoError(t, fs.Parse([]string{"--actor", "From Flag"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.Actor("From Flag"), cfg.Actor, "flag beats env and file")
	assert.Equal(t, 30, cfg.PageLines, "env beats file")
	assert.Equal(t, "http://file", cfg.APIURL, "unset flag does not shadow file")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedHomeConfig(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".procreview")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("actor: [unclosed\n"), 0o644))

	_, err := NewLoader().Load("")
	assert.Error(t, err)
}

func TestLoad_BlankActorFallsBack(t *testing.T) {
	isolate(t)
	l := NewLoader()
	l.Set(KeyActor, "   ")
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultActor, cfg.Actor)
}

func TestValidate(t *testing.T) {
	base := DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "redis" }},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }},
		{"file without path", func(c *Config) { c.Store = "file"; c.SnapshotFile = "" }},
		{"negative latency", func(c *Config) { c.LatencyMs = -1 }},
		{"zero page lines", func(c *Config) { c.PageLines = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	assert.NoError(t, base.Validate())
	mem := base
	mem.Store = "memory"
	mem.DBPath = ""
	assert.NoError(t, mem.Validate())
}
