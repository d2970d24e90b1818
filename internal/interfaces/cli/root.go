// Package cli implements the chemconf command tree: the root command with
// global flags and dependency bootstrap, plus the generate, optimize and
// history subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemConformer/internal/application/optimization"
	"github.com/turtacn/ChemConformer/internal/config"
	"github.com/turtacn/ChemConformer/internal/domain/conformer"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemConformer/internal/infrastructure/storage/ledger"
	"github.com/turtacn/ChemConformer/internal/infrastructure/storage/xyz"
	"github.com/turtacn/ChemConformer/internal/intelligence/embed"
	"github.com/turtacn/ChemConformer/internal/intelligence/simanl"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath  string
	LogLevel    string
	Cores       int
	MetricsAddr string
	OutputDir   string
}

// CLIContext carries the initialized dependencies through the command tree.
type CLIContext struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *prom.PipelineMetrics

	Writer    *xyz.Writer
	Store     *ledger.Store // nil when the ledger is disabled
	Generator *conformer.Generator
	Service   *optimization.Service
}

type cliContextKey struct{}

// NewRootCommand creates the chemconf root command with global flags and all
// subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "chemconf",
		Short:   "chemconf — conformer generation and geometry optimisation pipeline",
		Long:    "chemconf bootstraps molecular structures from SMILES or XYZ input,\ngenerates unique conformer ensembles by embedding or simulated annealing,\nand refines geometries through a pluggable optimisation engine.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: env + built-in defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.IntVar(&opts.Cores, "cores", 0, "worker count for parallel stages (default: all CPUs)")
	pf.StringVar(&opts.MetricsAddr, "metrics-addr", "", "listen address for the /metrics endpoint (disabled when empty)")
	pf.StringVarP(&opts.OutputDir, "output-dir", "o", "", "directory for XYZ output files")

	cmd.AddCommand(
		newGenerateCmd(),
		newOptimizeCmd(),
		newHistoryCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration, builds the logger, wires the pipeline
// dependencies and stores the CLIContext on the command context.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	// With a config file, watch it and hot-reload the safe subset (log
	// level).  Matters for long-lived invocations such as --metrics-addr.
	if opts.ConfigPath != "" {
		level := cfg.Log.Level
		config.Watch(opts.ConfigPath, func(next *config.Config) {
			if next.Log.Level == level {
				return
			}
			if ls, ok := log.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
				level = next.Log.Level
				log.Info("log level reloaded from config file",
					logging.String("level", level))
			}
		})
	}

	metrics := prom.NewPipelineMetrics()
	if cfg.Metrics.Addr != "" {
		go func() {
			if serveErr := metrics.Serve(cfg.Metrics.Addr); serveErr != nil {
				log.Warn("metrics listener stopped", logging.Err(serveErr))
			}
		}()
	}

	writer, err := xyz.NewWriter(cfg.Output.Dir, log)
	if err != nil {
		return err
	}

	var store *ledger.Store
	if cfg.Output.LedgerPath != "" {
		store, err = ledger.Open(cfg.Output.LedgerPath, log)
		if err != nil {
			return err
		}
	}

	gen := conformer.NewGenerator(
		embed.New(embed.Config{}, log),
		simanl.New(simanl.Config{}, log),
		conformer.Options{
			NCores:         cfg.NCores,
			RMSDThreshold:  cfg.Sampling.RMSDThreshold,
			PruneThreshold: cfg.Sampling.PruneThreshold,
			WorkerTimeout:  cfg.Sampling.WorkerTimeout,
		},
		log, metrics)

	svc := optimization.NewService(
		simanl.NewEngine(simanl.Config{}, log),
		nil,
		writer,
		store,
		optimization.Options{
			NCores:           cfg.NCores,
			SolventSubSearch: cfg.Optimization.SolventSubSearch,
		},
		log, metrics)

	cliCtx := &CLIContext{
		Config:    cfg,
		Logger:    log,
		Metrics:   metrics,
		Writer:    writer,
		Store:     store,
		Generator: gen,
		Service:   svc,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Cores > 0 {
		cfg.NCores = opts.Cores
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	return cfg, cfg.Validate()
}

// GetCLIContext extracts the CLIContext placed by persistentPreRun.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLI context not initialized")
	}
	return cliCtx, nil
}

// Execute runs the root command and maps failures onto the documented
// process exit statuses.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(errors.ExitStatusForCode(errors.GetCode(err)))
	}
}
