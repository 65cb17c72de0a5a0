package model

import "time"

// Defaults applied when a series row leaves the corresponding column NULL.
// The store applies them at the read boundary so the rest of the code only
// ever sees a fully populated Series.
const (
	DefaultStartHour     = 8
	DefaultStartMinute   = 0
	DefaultDurationMin   = 240
	DefaultHorizonMonths = 6
)

// Series is a recurring-event template. The materializer reads it, expands
// the recurrence rule over a forward window, and upserts one Event per
// occurrence; the only field it ever writes back is LastGeneratedThrough.
type Series struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// RRule is an RFC 5545 recurrence rule, e.g. "FREQ=MONTHLY;BYDAY=+2SA".
	RRule   string `json:"rrule"`
	CityID  int64  `json:"city_id"`
	VenueID *int64 `json:"venue_id"`
	// StartHour/StartMinute are Eastern wall-clock time of day.
	StartHour     int `json:"start_hour"`
	StartMinute   int `json:"start_minute"`
	DurationMin   int `json:"duration_min"`
	HorizonMonths int `json:"horizon_months"`
	// SlugBase is unique across series and namespaces the generated event
	// slugs.
	SlugBase  string `json:"slug_base"`
	EventType string `json:"event_type"`
	// LastGeneratedThrough is the watermark: the end of the window already
	// materialized. Informational only; it never gates regeneration.
	LastGeneratedThrough *time.Time `json:"last_generated_through"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
