// Package cmd implements the go-patrol command line.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-patrol/config"
	"go-patrol/logger"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:   "go-patrol",
		Short: "Patrol incident analysis and reporting",
		Long: `go-patrol classifies and deduplicates patrol incident records,
resolves their locations against the provincial gazetteer and lays out
monthly crime analysis reports.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(reportCommand())
	rootCmd.AddCommand(importCommand())
	rootCmd.AddCommand(cleanupCommand())
	rootCmd.AddCommand(classifyCommand())
}

// loadConfig reads .env, the config file and the environment.
func loadConfig() (*config.Config, logger.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}
