// Package search maintains a denormalized projection of published events for
// substring search, rebuilt after generation and import runs.
package search

import (
	"database/sql"
	"fmt"
	"time"

	"showcal/internal/model"
)

type Index struct {
	db *sql.DB
}

func NewIndex(db *sql.DB) *Index {
	return &Index{db: db}
}

// Rebuild replaces the projection from the live tables in one transaction.
func (ix *Index) Rebuild() error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reindex: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM search_index`); err != nil {
		return fmt.Errorf("clear search index: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO search_index (event_id, slug, title, body, city_name, venue_name, start_at)
		 SELECT e.id, e.slug, e.title, e.description, c.name, COALESCE(v.name, ''), e.start_at
		 FROM events e
		 JOIN cities c ON c.id = e.city_id
		 LEFT JOIN venues v ON v.id = e.venue_id
		 WHERE e.status = ?`,
		model.StatusPublished,
	)
	if err != nil {
		return fmt.Errorf("fill search index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reindex: %w", err)
	}
	return nil
}

// Result is one search hit.
type Result struct {
	EventID   int64     `json:"event_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	CityName  string    `json:"city_name"`
	VenueName string    `json:"venue_name"`
	StartAt   time.Time `json:"start_at"`
}

// Search returns up to limit events whose title, body, city, or venue
// contains q, soonest first.
func (ix *Index) Search(q string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + q + "%"

	rows, err := ix.db.Query(
		`SELECT event_id, slug, title, city_name, venue_name, start_at
		 FROM search_index
		 WHERE title LIKE ? OR body LIKE ? OR city_name LIKE ? OR venue_name LIKE ?
		 ORDER BY start_at ASC
		 LIMIT ?`,
		like, like, like, like, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query search index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.EventID, &r.Slug, &r.Title, &r.CityName, &r.VenueName, &r.StartAt); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
