// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"
)

// ConfigSetLogCommand rewrites the logging keys in the TOML config file in
// place, so a running deployment can change its log level or rotation
// policy without hand-editing wikiprism.toml. No command watches the
// config file with WatchAndReload, so a process that is already running
// picks up the change only when it is started again.
func ConfigSetLogCommand() *cobra.Command {
	var logLevel, logPath string
	var logMaxSize, logMaxBackups int

	cmd := &cobra.Command{
		Use:   "set-log",
		Short: "Update the configured log level, path and rotation policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return cfg.SetLogSettings(logLevel, logPath, logMaxSize, logMaxBackups)
		},
	}

	cmd.Flags().StringVar(&logLevel, "level", "INFO", "Log level (ERROR, WARN, INFO, DEBUG, TRACE)")
	cmd.Flags().StringVar(&logPath, "path", "", "Log file path, empty for stdout")
	cmd.Flags().IntVar(&logMaxSize, "max-size", 50, "Maximum log file size in megabytes before rotation")
	cmd.Flags().IntVar(&logMaxBackups, "max-backups", 3, "Number of rotated log files to retain")

	return cmd
}

// ConfigCommand groups the config subcommands under `wikiprism config`.
func ConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or update the TOML configuration file",
	}

	cmd.AddCommand(ConfigSetLogCommand())

	return cmd
}
