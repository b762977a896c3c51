// Package testutil provides shared test helpers for setting up databases
// and seed data.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedStages inserts active non-system stages in the given order.
func SeedStages(t *testing.T, db *store.DB, names ...string) {
	t.Helper()
	for i, name := range names {
		err := db.UpsertStage(models.PipelineStage{
			Name:        name,
			DisplayName: name,
			Order:       i + 1,
			IsActive:    true,
		})
		if err != nil {
			t.Fatalf("seed stage %s: %v", name, err)
		}
	}
}

// SeedLead inserts a lead and returns it.
func SeedLead(t *testing.T, db *store.DB, first, last, phone, stage string) *models.Lead {
	t.Helper()
	l := &models.Lead{
		FirstName: first,
		LastName:  last,
		Phone:     phone,
		Stage:     stage,
	}
	if err := db.CreateLead(l); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return l
}
