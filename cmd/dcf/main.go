package main

import (
	"context"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/valuation"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitInvalid    = 2
	exitUnsolvable = 3 // missing or invalid fundamental, domain violation
)

var (
	configPath string
	verbose    bool
	timeout    time.Duration

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dcf",
	Short: "Discounted cash flow valuation from public fundamentals",
	Long: `dcf values a public company with a FCFF discounted cash flow model.

Fundamentals come from SEC EDGAR, local snapshot files or Postgres.
Macro assumptions are given in percent (4.2 means 4.2%).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
		logger.SetGlobalLogger(log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		store.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(valueCmd, fetchCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, valuation.ErrInvalidAssumption):
		return exitInvalid
	case errors.Is(err, valuation.ErrMissingFundamental),
		errors.Is(err, valuation.ErrInvalidFundamental),
		errors.Is(err, valuation.ErrDomainViolation):
		return exitUnsolvable
	}
	return exitError
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
