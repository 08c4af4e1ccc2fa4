// Package dbtest provides a file-backed SQLite provider for tests. Each
// operation opens its own connection, so an in-memory database would not
// survive between calls.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shinyyama/revenue-dashboard/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewProvider returns a provider over a fresh database with the schema applied.
func NewProvider(t testing.TB) *db.Provider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revenue.db")
	p := db.NewProvider(func() gorm.Dialector { return sqlite.Open(path) })
	if err := db.EnsureSchema(context.Background(), p); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return p
}

// Broken returns a provider whose every connection attempt fails.
func Broken(t testing.TB) *db.Provider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "missing", "dir", "revenue.db")
	return db.NewProvider(func() gorm.Dialector { return sqlite.Open(path) })
}
