package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/docsim/internal/config"
	"github.com/ludo-technologies/docsim/internal/logging"
)

// loadConfig resolves the configuration for a command: the --config file or a
// discovered .docsim.toml, with explicitly set flags applied on top. The
// process logger is configured from the result.
func loadConfig(cmd *cobra.Command, targetDir string, overrides config.Overrides) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	overrides.LogLevel, _ = cmd.Flags().GetString(config.FlagLogLevel)
	overrides.LogFormat, _ = cmd.Flags().GetString(config.FlagLogFormat)

	cfg, err := config.Load(configPath, targetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	tracker := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	if err := cfg.ApplyOverrides(overrides, tracker); err != nil {
		return nil, err
	}

	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	logging.WithComponent("cli").Debug("configuration loaded",
		"config", configPath,
		"explicit_flags", tracker.Count())
	return cfg, nil
}
