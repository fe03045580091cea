// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/giancosta86/wikiprism/internal/config"
)

var configPath string

// RootCommand builds the wikiprism CLI: run extracts a dump into a
// dictionary, query runs ad-hoc SQL against one, serve exposes an existing
// dictionary to ad-hoc queries over HTTP.
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikiprism",
		Short: "Extracts terminology from MediaWiki XML dumps into a queryable dictionary",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "wikiprism.toml", "Path to the TOML configuration file")

	cmd.AddCommand(RunCommand())
	cmd.AddCommand(QueryCommand())
	cmd.AddCommand(ServeCommand())
	cmd.AddCommand(ConfigCommand())

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	if path := cfg.GetLogPath(); path != "" {
		output = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.GetLogMaxSize(),
			MaxBackups: cfg.GetLogMaxBackups(),
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}
