// Package cli defines the pricing-oracle command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unytco/pricing-oracle/pkg/config"
	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/metrics"
	"github.com/unytco/pricing-oracle/pkg/version"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pricing-oracle",
	Short: "Fetch token prices, validate them, and publish a ConversionTable to the Unyt ledger",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version must work without a config file.
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		if cfg != nil {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
		if err != nil {
			return err
		}
		logging.SetGlobal(logger)

		if cfg.Metrics.Enabled {
			metrics.Init()
			go func() {
				logger.Info("Starting metrics listener", "addr", cfg.Metrics.Addr)
				if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
					logger.Error("Metrics listener failed", "error", err)
				}
			}()
		}

		logger.Info("Starting pricing-oracle", "version", version.Version)
		return nil
	},
}

// Execute runs the root command under a signal-aware context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getConfig() *config.Config {
	if cfg == nil {
		panic("configuration not loaded; PersistentPreRunE not executed")
	}
	return cfg
}

func getLogger() *logging.Logger {
	if logger == nil {
		panic("logger not initialized; PersistentPreRunE not executed")
	}
	return logger
}
