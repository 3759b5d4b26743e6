package main

import (
	"github.com/spf13/cobra"

	"github.com/seantiz/linebench/internal/config"
)

const (
	FlagFiles       = "files"
	FlagLines       = "lines"
	FlagPool        = "pool"
	FlagDir         = "dir"
	FlagKeep        = "keep"
	FlagStrategies  = "strategies"
	FlagIsolation   = "isolation"
	FlagMetricsAddr = "metrics-addr"
	FlagBuffered    = "buffered"
	FlagEnvFile     = "env-file"
)

// flagValues holds the raw flag values; only flags the user set override
// the environment.
type flagValues struct {
	files       int
	lines       int
	pool        int
	dir         string
	keep        bool
	strategies  string
	isolation   string
	metricsAddr string
	buffered    bool
	envFile     string
}

func newRootCommand() *cobra.Command {
	var fv flagValues

	rootCmd := &cobra.Command{
		Use:   "linebench",
		Short: "Compare concurrency strategies on a line-reading workload",
		Long: "linebench writes N files of M lines, then reads and prints every line once per " +
			"strategy (sequential, threads, fibers, async, isolates, pool) and reports " +
			"user, system, total and real time for each.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(fv.envFile); err != nil {
				return withCode(ExitCodeInvalidConfig, err)
			}
			cfg := applyFlags(cmd, config.Load(), fv)
			if err := cfg.Validate(); err != nil {
				return withCode(ExitCodeInvalidConfig, err)
			}
			return runBenchmark(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(ExitCodeInvalidConfig, err)
	})

	flags := rootCmd.Flags()
	flags.IntVarP(&fv.files, FlagFiles, "f", 5, "number of files to generate")
	flags.IntVarP(&fv.lines, FlagLines, "l", 100_000, "number of lines per file")
	flags.IntVarP(&fv.pool, FlagPool, "p", 0, "worker count of the pool strategy; 0 means one per CPU")
	flags.StringVar(&fv.dir, FlagDir, "", "parent directory for the generated files (default system temp dir)")
	flags.BoolVar(&fv.keep, FlagKeep, false, "keep the generated files after the run")
	flags.StringVar(&fv.strategies, FlagStrategies, "", "comma separated strategies to run (default all)")
	flags.StringVar(&fv.isolation, FlagIsolation, "", "isolates strategy worker mode: actor or process (default actor)")
	flags.StringVar(&fv.metricsAddr, FlagMetricsAddr, "", "serve health, metrics and results on this address while running")
	flags.BoolVar(&fv.buffered, FlagBuffered, false, "buffer emitted lines instead of writing each line to stdout")
	flags.StringVar(&fv.envFile, FlagEnvFile, ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(newWorkerCommand(), newStrategiesCommand())
	return rootCmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg config.Config, fv flagValues) config.Config {
	flags := cmd.Flags()
	if flags.Changed(FlagFiles) {
		cfg.FileCount = fv.files
	}
	if flags.Changed(FlagLines) {
		cfg.LineCount = fv.lines
	}
	if flags.Changed(FlagPool) {
		cfg.PoolSize = fv.pool
	}
	if flags.Changed(FlagDir) {
		cfg.WorkDir = fv.dir
	}
	if flags.Changed(FlagKeep) {
		cfg.KeepFiles = fv.keep
	}
	if flags.Changed(FlagStrategies) {
		cfg.Strategies = config.ParseList(fv.strategies)
	}
	if flags.Changed(FlagIsolation) {
		cfg.Isolation = fv.isolation
	}
	if flags.Changed(FlagMetricsAddr) {
		cfg.MetricsAddr = fv.metricsAddr
	}
	if flags.Changed(FlagBuffered) {
		cfg.Buffered = fv.buffered
	}
	return cfg
}
