// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sqldict_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	sqldict "github.com/giancosta86/wikiprism/internal/dictionary/sql"
)

type myTestTerm struct {
	entry string
}

func openConn(t *testing.T) *sql.Conn {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	return conn
}

func newTestDictionary(t *testing.T, conn *sql.Conn) *sqldict.SqlDictionary[myTestTerm] {
	t.Helper()
	return sqldict.NewSqlDictionary[myTestTerm](conn,
		func(ctx context.Context, conn *sql.Conn) error {
			_, err := conn.ExecContext(ctx, `CREATE TABLE my_table (entry TEXT PRIMARY KEY)`)
			return err
		},
		func(s *sqldict.BufferedSerialiser) {
			sqldict.Register(s, `INSERT INTO my_table (entry) VALUES (?)`, func(term myTestTerm) ([][]any, error) {
				return [][]any{{term.entry}}, nil
			})
		})
}

func TestSqlDictionaryInsertsTerms(t *testing.T) {
	conn := openConn(t)
	dict := newTestDictionary(t, conn)

	require.NoError(t, dict.CreateSchema())
	require.NoError(t, dict.AddTerm(myTestTerm{entry: "Alpha"}))
	require.NoError(t, dict.Close())

	readConn := openConn(t)
	var entry string
	require.NoError(t, readConn.QueryRowContext(context.Background(),
		`SELECT entry FROM my_table WHERE entry = ?`, "Alpha").Scan(&entry))
	assert.Equal(t, "Alpha", entry)
}

func TestSqlDictionaryExecuteCommandSucceeds(t *testing.T) {
	conn := openConn(t)
	dict := newTestDictionary(t, conn)

	require.NoError(t, dict.CreateSchema())
	require.NoError(t, dict.AddTerm(myTestTerm{entry: "Alpha"}))
	require.NoError(t, dict.AddTerm(myTestTerm{entry: "Beta"}))
	require.NoError(t, dict.Flush())

	result, err := dict.ExecuteCommand(context.Background(), `SELECT entry FROM my_table ORDER BY entry`)
	require.NoError(t, err)
	assert.Equal(t, []string{"entry"}, result.Headers)
	require.Len(t, result.Rows, 2)
}

func TestSqlDictionaryExecuteCommandReturnsErrorAsValue(t *testing.T) {
	conn := openConn(t)
	dict := newTestDictionary(t, conn)
	require.NoError(t, dict.CreateSchema())

	result, err := dict.ExecuteCommand(context.Background(), `SELECT entry FROM no_such_table`)
	assert.Nil(t, result)
	assert.Error(t, err)
}
