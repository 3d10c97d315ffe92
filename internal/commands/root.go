// Package commands implements the gresh command line.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thablackcodes/gresh-finance/internal/buildinfo"
	"github.com/thablackcodes/gresh-finance/internal/config"
	"github.com/thablackcodes/gresh-finance/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "gresh",
		Short:   "Gresh finance ledger service",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newMigrateCommand(&configPath))

	return rootCmd
}

// loadConfig reads the configuration and builds the matching logger.
func loadConfig(path string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.IsProduction())
	return cfg, log, nil
}
