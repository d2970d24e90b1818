// Package config provides configuration loading, defaults, and validation
// for ChemConformer.
package config

import "runtime"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMaxEmbedAttempts and DefaultMaxAnnealAttempts match the
	// canonical 300-conformer search depth per strategy.
	DefaultMaxEmbedAttempts  = 300
	DefaultMaxAnnealAttempts = 300

	// DefaultRMSDThreshold is the uniqueness cutoff in angstroms.
	DefaultRMSDThreshold = 0.3

	// DefaultPruneThreshold is the embedding pre-filter cutoff in angstroms.
	DefaultPruneThreshold = 0.5

	// DefaultSolventSubSearch is the bounded explicit-solvent configuration
	// search size.
	DefaultSolventSubSearch = 96

	DefaultOutputDir = "."

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  Fields that have already been set by the caller are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.NCores == 0 {
		cfg.NCores = runtime.NumCPU()
	}

	// ── Sampling ──────────────────────────────────────────────────────────────
	if cfg.Sampling.MaxEmbedAttempts == 0 {
		cfg.Sampling.MaxEmbedAttempts = DefaultMaxEmbedAttempts
	}
	if cfg.Sampling.MaxAnnealAttempts == 0 {
		cfg.Sampling.MaxAnnealAttempts = DefaultMaxAnnealAttempts
	}
	if cfg.Sampling.RMSDThreshold == 0 {
		cfg.Sampling.RMSDThreshold = DefaultRMSDThreshold
	}
	if cfg.Sampling.PruneThreshold == 0 {
		cfg.Sampling.PruneThreshold = DefaultPruneThreshold
	}

	// ── Optimization ──────────────────────────────────────────────────────────
	if cfg.Optimization.SolventSubSearch == 0 {
		cfg.Optimization.SolventSubSearch = DefaultSolventSubSearch
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
