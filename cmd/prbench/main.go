package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"prbench/internal/config"
)

var (
	cfg    = config.Default()
	logger *zap.Logger

	timeoutSeconds int
)

// rootCmd drives the whole harness: one command, two modes (iterative and
// bulk).
var rootCmd = &cobra.Command{
	Use:   "prbench",
	Short: "Loop protect/reveal calls against a tokenization API and measure time",
	Long: `prbench repeatedly sends data through a protect (tokenize) endpoint,
feeds the resulting token to the reveal (detokenize) endpoint, and checks
that the original value comes back. It reports latency and success/match
statistics. With --bulk it batches items through the bulk endpoints
(default 25 per batch).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if cfg.Verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if cfg.Bulk {
			return runBulkMode(cmd.Context(), cfg, logger)
		}
		return runIterativeMode(cmd.Context(), cfg, logger)
	},
}

func init() {
	cfg.ApplyEnvOverrides()

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "API host")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "API port")
	flags.StringVar(&cfg.Policy, "policy", cfg.Policy, "protection_policy_name")
	flags.StringVar(&cfg.StartData, "start-data", cfg.StartData, "numeric data to start from")
	flags.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "number of iterations")
	flags.IntVar(&timeoutSeconds, "timeout", int(cfg.Timeout/time.Second), "per-request timeout seconds")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")
	flags.BoolVar(&cfg.ShowBodies, "show-bodies", false, "print request and response JSON bodies")
	flags.BoolVar(&cfg.ShowProgress, "show-progress", false, "show per-iteration progress output")
	flags.BoolVar(&cfg.Bulk, "bulk", false, "use bulk protect/reveal endpoints")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "batch size for bulk operations")
}

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\noperation cancelled by user")
		os.Exit(1)
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}
