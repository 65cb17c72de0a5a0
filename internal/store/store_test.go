package store

import (
	"database/sql"
	"testing"

	"showcal/internal/database"
	"showcal/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestCity(t *testing.T, db *sql.DB) *model.City {
	t.Helper()

	city, err := NewCityStore(db).Create("Rochester", "rochester", "NY")
	if err != nil {
		t.Fatalf("create test city: %v", err)
	}
	return city
}
