package commands

import (
	"fmt"
	"os"

	"github.com/imyashkale/shutdownmanager/internal/config"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	backend   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "shutdownmanager",
	Short: "Track the decommissioning of applications and their servers",
	Long: `Shutdown Manager records the shutdown status of every application and
server in a fleet, reconciles bulk inventory imports and reports how far
the fleet is from being fully verified as shut down.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.Overrides{
			Port:         port,
			LogLevel:     logLevel,
			LogFormat:    logFormat,
			StoreBackend: backend,
		})
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend (badger, dynamodb, memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(templateCmd)
}
