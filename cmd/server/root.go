package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rpattn/leadcrm/internal/config"
	"github.com/rpattn/leadcrm/internal/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "leadcrm",
		Short:         "Lead management backend with bulk CSV ingestion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", ".", "directory or file holding config.yaml")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSeedEmployeesCmd(opts))
	return cmd
}

// bootstrap loads configuration and builds the process logger.
func bootstrap(opts *rootOptions) (config.Config, *logrus.Logger, io.Closer, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, log, closer, nil
}
