// Package config defines all configuration structures for ChemConformer.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// SamplingConfig holds conformer-generation tunables.
type SamplingConfig struct {
	// MaxEmbedAttempts is the number of candidate conformations requested
	// from the embedding collaborator per generation pass.
	MaxEmbedAttempts int `mapstructure:"max_embed_attempts"`

	// MaxAnnealAttempts is the number of independent simulated-annealing
	// runs submitted per generation pass.
	MaxAnnealAttempts int `mapstructure:"max_anneal_attempts"`

	// RMSDThreshold is the uniqueness-filter threshold in angstroms: a
	// candidate whose best-fit RMSD to any accepted conformer falls below it
	// is rejected as a duplicate.
	RMSDThreshold float64 `mapstructure:"rmsd_threshold"`

	// PruneThreshold is the coarse pre-filter threshold (angstroms) passed
	// to the embedding collaborator.
	PruneThreshold float64 `mapstructure:"prune_threshold"`

	// WorkerTimeout bounds a whole annealing batch.  Zero means wait
	// indefinitely, which is acceptable for offline batch jobs.
	WorkerTimeout time.Duration `mapstructure:"worker_timeout"`
}

// OptimizationConfig holds geometry-refinement tunables.
type OptimizationConfig struct {
	// SolventSubSearch is the bounded number of solvent-configuration
	// conformers explored by the explicit-solvent QM/MM collaborator.
	SolventSubSearch int `mapstructure:"solvent_sub_search"`
}

// OutputConfig holds durable-output locations.
type OutputConfig struct {
	// Dir is the directory XYZ structure files are written to.
	Dir string `mapstructure:"dir"`

	// LedgerPath is the path of the sqlite run ledger.  Empty disables the
	// ledger entirely.
	LedgerPath string `mapstructure:"ledger_path"`
}

// MetricsConfig holds Prometheus exposure settings.
type MetricsConfig struct {
	// Addr is the listen address for the /metrics endpoint.  Empty disables
	// the listener; metrics are still collected in-process.
	Addr string `mapstructure:"addr"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the process-wide configuration root.  NCores is the single
// shared worker-count setting read (never mutated) by every parallel
// operation in the pipeline.
type Config struct {
	NCores       int                `mapstructure:"n_cores"`
	Sampling     SamplingConfig     `mapstructure:"sampling"`
	Optimization OptimizationConfig `mapstructure:"optimization"`
	Output       OutputConfig       `mapstructure:"output"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Log          LogConfig          `mapstructure:"log"`
}

// Validate checks cross-field consistency.  It assumes ApplyDefaults has
// already filled zero-value fields.
func (c *Config) Validate() error {
	if c.NCores < 1 {
		return fmt.Errorf("n_cores must be >= 1, got %d", c.NCores)
	}
	if c.Sampling.MaxEmbedAttempts < 1 {
		return fmt.Errorf("sampling.max_embed_attempts must be >= 1, got %d", c.Sampling.MaxEmbedAttempts)
	}
	if c.Sampling.MaxAnnealAttempts < 1 {
		return fmt.Errorf("sampling.max_anneal_attempts must be >= 1, got %d", c.Sampling.MaxAnnealAttempts)
	}
	if c.Sampling.RMSDThreshold <= 0 {
		return fmt.Errorf("sampling.rmsd_threshold must be > 0, got %g", c.Sampling.RMSDThreshold)
	}
	if c.Sampling.WorkerTimeout < 0 {
		return fmt.Errorf("sampling.worker_timeout must be >= 0, got %v", c.Sampling.WorkerTimeout)
	}
	if c.Optimization.SolventSubSearch < 1 {
		return fmt.Errorf("optimization.solvent_sub_search must be >= 1, got %d", c.Optimization.SolventSubSearch)
	}
	return nil
}
