// Package dbtest opens throwaway in-memory stores for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	eventsdb "eventify/internal/events/db"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewSQLiteDB returns an empty events schema in a private in-memory SQLite
// database, closed when the test ends.
func NewSQLiteDB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// Every new connection would get its own empty :memory: database.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	if err := eventsdb.CreateSchema(context.Background(), bunDB); err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}
	return bunDB
}
