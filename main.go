package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cricket-booking/internal/config"
	"cricket-booking/internal/logger"
	"cricket-booking/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "cricket-booking",
		Short:         "Cricket ground booking and scheduling service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFiles(envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serveOptions{})
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.NewLogger(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFile(cfg.LogFile),
	)
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cfg), nil
}

// openStore picks the backend named by DB_DRIVER. The MySQL store creates its tables on open.
func openStore(cfg *config.Config, log *logger.Logger) (storage.Store, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("DATABASE", "Using in-memory store, data is lost on exit")
		return storage.NewInMemoryStore(), nil
	}

	log.LogProcess("DATABASE", "Initializing MySQL database...")
	store, err := storage.NewMySQLStore(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.LogDatabase("INIT", "mysql", "MySQL storage initialized successfully")
	return store, nil
}
