package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/config"
)

// errTasksFailed marks a completed run with per-task failures; main
// maps it to exit code 2, distinct from fatal errors.
var errTasksFailed = errors.New("some tasks failed")

type commandContext struct {
	configFlag *string
	cfg        *config.Config
	cfgPath    string
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the configuration at most once per invocation.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = path
	return cfg, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	return cmd.Annotations["skipConfigLoad"] == "true"
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "tonearm",
		Short:         "Tonearm music importer",
		Long:          "Tonearm ingests audio files, matches them against metadata candidates, and files them into an organized library.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCatalogCommand(ctx))

	return rootCmd
}
