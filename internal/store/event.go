package store

import (
	"database/sql"
	"fmt"
	"time"

	"showcal/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// EventFields carries every writable column of an event. Upsert sets all of
// them; the slug is the conflict key.
type EventFields struct {
	Slug        string
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	CityID      int64
	VenueID     *int64
	Status      string
	EventType   string
	Source      string
	SeriesID    *int64
}

// Upsert creates the event or, when the slug already exists, updates the
// mutable fields. The whole write is one statement so a concurrent run for
// the same slug converges rather than duplicating or interleaving fields.
func (s *EventStore) Upsert(f EventFields) (*model.Event, error) {
	var venueID, seriesID sql.NullInt64
	if f.VenueID != nil {
		venueID = sql.NullInt64{Int64: *f.VenueID, Valid: true}
	}
	if f.SeriesID != nil {
		seriesID = sql.NullInt64{Int64: *f.SeriesID, Valid: true}
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO events (slug, title, description, start_at, end_at, city_id, venue_id, status, event_type, source, series_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			city_id = excluded.city_id,
			venue_id = excluded.venue_id,
			status = excluded.status,
			event_type = excluded.event_type,
			source = excluded.source,
			series_id = excluded.series_id,
			updated_at = excluded.updated_at`,
		f.Slug, f.Title, f.Description, f.StartAt.UTC(), f.EndAt.UTC(), f.CityID,
		venueID, f.Status, f.EventType, f.Source, seriesID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert event %q: %w", f.Slug, err)
	}

	return s.GetBySlug(f.Slug)
}

func (s *EventStore) GetBySlug(slug string) (*model.Event, error) {
	row := s.db.QueryRow(
		`SELECT id, slug, title, description, start_at, end_at, city_id, venue_id, status, event_type, source, series_id, created_at, updated_at
		 FROM events WHERE slug = ?`,
		slug,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event %q: %w", slug, err)
	}
	return e, nil
}

// ListPublishedBetween returns published events overlapping [start, end),
// ordered by start time.
func (s *EventStore) ListPublishedBetween(start, end time.Time) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, description, start_at, end_at, city_id, venue_id, status, event_type, source, series_id, created_at, updated_at
		 FROM events
		 WHERE status = ? AND start_at < ? AND end_at > ?
		 ORDER BY start_at ASC`,
		model.StatusPublished, end.UTC(), start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return collectEvents(rows)
}

// ListByVenue returns published events at a venue starting at or after from.
func (s *EventStore) ListByVenue(venueID int64, from time.Time) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, description, start_at, end_at, city_id, venue_id, status, event_type, source, series_id, created_at, updated_at
		 FROM events
		 WHERE status = ? AND venue_id = ? AND start_at >= ?
		 ORDER BY start_at ASC`,
		model.StatusPublished, venueID, from.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query venue events: %w", err)
	}
	return collectEvents(rows)
}

// ListBySeries returns all events generated from a series, ordered by start.
func (s *EventStore) ListBySeries(seriesID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, description, start_at, end_at, city_id, venue_id, status, event_type, source, series_id, created_at, updated_at
		 FROM events
		 WHERE series_id = ?
		 ORDER BY start_at ASC`,
		seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("query series events: %w", err)
	}
	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var venueID, seriesID sql.NullInt64

	err := row.Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &e.StartAt, &e.EndAt,
		&e.CityID, &venueID, &e.Status, &e.EventType, &e.Source, &seriesID,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if venueID.Valid {
		e.VenueID = &venueID.Int64
	}
	if seriesID.Valid {
		e.SeriesID = &seriesID.Int64
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
