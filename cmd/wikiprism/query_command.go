// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	sqldict "github.com/giancosta86/wikiprism/internal/dictionary/sql"
)

// QueryCommand runs one ad-hoc SQL query against a dictionary database and
// prints the result as a simple table.
func QueryCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Run an ad-hoc SQL query against a dictionary database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sql.Open("sqlite", dbPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", dbPath, err)
			}
			defer db.Close()

			conn, err := db.Conn(cmd.Context())
			if err != nil {
				return fmt.Errorf("leasing connection: %w", err)
			}
			defer conn.Close()

			if err := sqldict.CheckSchemaVersion(cmd.Context(), conn, ">= 1.0.0, < 2.0.0"); err != nil {
				cmd.PrintErrf("warning: %v\n", err)
			}

			result, err := sqldict.ExecuteCommandOn(cmd.Context(), conn, args[0])
			if err != nil {
				return err
			}

			cmd.Println(strings.Join(result.Headers, "\t"))
			for _, row := range result.Rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = fmt.Sprintf("%v", v)
				}
				cmd.Println(strings.Join(cells, "\t"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the dictionary database")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
