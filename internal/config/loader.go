// Package config provides configuration loading, defaults, and validation
// for ChemConformer.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMCONF"

// newViper builds a pre-configured Viper instance with the standard settings:
// YAML file type, CHEMCONF_ env prefix, automatic env binding, and a key
// replacer that maps "." → "_" so that nested keys like "sampling.rmsd_threshold"
// resolve to "CHEMCONF_SAMPLING_RMSD_THRESHOLD".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Register every key with a zero default so that env-only overrides are
	// visible to Unmarshal (viper resolves AutomaticEnv only for known keys).
	v.SetDefault("n_cores", 0)
	v.SetDefault("sampling.max_embed_attempts", 0)
	v.SetDefault("sampling.max_anneal_attempts", 0)
	v.SetDefault("sampling.rmsd_threshold", 0.0)
	v.SetDefault("sampling.prune_threshold", 0.0)
	v.SetDefault("sampling.worker_timeout", "0s")
	v.SetDefault("optimization.solvent_sub_search", 0)
	v.SetDefault("output.dir", "")
	v.SetDefault("output.ledger_path", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output", "")
	return v
}

// Load reads the YAML file at configPath, merges any CHEMCONF_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMCONF_* environment variables,
// with no config file required.  This is the default loading strategy when
// the CLI is run without --config.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	// Weak typing lets CHEMCONF_* env strings decode into numeric fields.
	weak := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = true }
	if err := v.Unmarshal(cfg, weak); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level and the RMSD
// threshold of subsequent generation passes; callers are responsible for
// applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; the background watcher is managed by viper (fsnotify
// underneath).  If the changed file fails to parse or validate, onChange is
// not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
