// Package modeltest opens throwaway databases for tests.
package modeltest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"stellarbot/src-server/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewDB returns an in-memory sqlite database with the schema created. It is
// closed when the test ends.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	rawDB, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatal(err)
	}
	// one connection, so a transaction never waits on another connection
	// of the same in-memory database
	rawDB.SetMaxOpenConns(1)

	db := bun.NewDB(rawDB, sqlitedialect.New())
	if err := model.CreateSchema(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
