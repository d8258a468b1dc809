package cmd

import (
	"os"

	"cast_check/config"
	"cast_check/share"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	logLevel     string
	registryPath string
)

var rootCmd = &cobra.Command{
	Use:           "cast_check",
	Short:         "Cooldown usage and cast efficiency of a fight",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("registry") {
			cfg.Registry = registryPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.ApplyLogLevel()

		return errors.Wrap(share.InitSentry(cfg.SentryDSN), "sentry")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Ability table, CSV or YAML")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%+v", err)
		os.Exit(1)
	}
}
