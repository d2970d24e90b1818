package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chemconf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
n_cores: 4
sampling:
  max_anneal_attempts: 50
  rmsd_threshold: 0.25
output:
  dir: /tmp/confs
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.NCores)
	assert.Equal(t, 50, cfg.Sampling.MaxAnnealAttempts)
	assert.Equal(t, 0.25, cfg.Sampling.RMSDThreshold)
	assert.Equal(t, "/tmp/confs", cfg.Output.Dir)
	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultMaxEmbedAttempts, cfg.Sampling.MaxEmbedAttempts)
	assert.Equal(t, DefaultSolventSubSearch, cfg.Optimization.SolventSubSearch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeTempConfig(t, `
sampling:
  rmsd_threshold: -1.0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHEMCONF_N_CORES", "3")
	t.Setenv("CHEMCONF_LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NCores)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestWatch_ReloadsOnFileChange(t *testing.T) {
	path := writeTempConfig(t, `
log:
  level: info
`)

	reloads := make(chan *Config, 8)
	Watch(path, func(cfg *Config) { reloads <- cfg })

	// Give the fsnotify watcher a moment to arm before rewriting.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
sampling:
  rmsd_threshold: 0.5
`), 0o644))

	deadline := time.After(10 * time.Second)
	for {
		select {
		case cfg := <-reloads:
			if cfg.Log.Level != "debug" {
				continue // stale event for the original content
			}
			assert.Equal(t, 0.5, cfg.Sampling.RMSDThreshold)
			return
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestWatch_InvalidChangeIsNotDelivered(t *testing.T) {
	path := writeTempConfig(t, `
log:
  level: info
`)

	reloads := make(chan *Config, 8)
	Watch(path, func(cfg *Config) { reloads <- cfg })

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`
sampling:
  rmsd_threshold: -1.0
`), 0o644))

	select {
	case cfg := <-reloads:
		t.Fatalf("invalid config was delivered: %+v", cfg)
	case <-time.After(2 * time.Second):
	}
}
