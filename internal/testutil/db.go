package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/Coursely/internal/db"
	"github.com/codr1/Coursely/internal/models"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// NewSeededTestDB creates a test database holding the embedded built-in
// catalog and returns the seeded built-ins.
func NewSeededTestDB(t *testing.T) (*db.DB, []models.Theme) {
	t.Helper()

	database := NewTestDB(t)
	catalog, err := db.ParseThemesFile()
	if err != nil {
		t.Fatalf("parse themes file: %v", err)
	}
	builtIns, err := db.SeedBuiltInThemes(context.Background(), database, catalog)
	if err != nil {
		t.Fatalf("seed built-in themes: %v", err)
	}
	return database, builtIns
}
