package model

import "time"

// Event status values.
const (
	StatusPublished = "PUBLISHED"
	StatusDraft     = "DRAFT"
)

// Event sources.
const (
	SourceSeries = "series"
	SourceImport = "import"
)

// Event types.
const (
	TypeMeet   = "MEET"
	TypeShow   = "SHOW"
	TypeCruise = "CRUISE"
)

// Event is a single listed car show or meet. Events materialized from a
// series carry Source "series" and a SeriesID back-reference; their slug is
// the series slug base plus the Eastern civil date of the start instant.
type Event struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CityID      int64     `json:"city_id"`
	VenueID     *int64    `json:"venue_id"`
	Status      string    `json:"status"`
	EventType   string    `json:"event_type"`
	Source      string    `json:"source"`
	SeriesID    *int64    `json:"series_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
