package store

import (
	"database/sql"
	"fmt"
	"time"

	"showcal/internal/model"
)

type SeriesStore struct {
	db *sql.DB
}

func NewSeriesStore(db *sql.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

// SeriesFields carries the writable columns of a series. The numeric fields
// are pointers so "unset" survives to the row as NULL and the documented
// defaults apply on read.
type SeriesFields struct {
	Title         string
	Description   string
	RRule         string
	CityID        int64
	VenueID       *int64
	StartHour     *int
	StartMinute   *int
	DurationMin   *int
	HorizonMonths *int
	SlugBase      string
	EventType     string
}

func (s *SeriesStore) Create(f SeriesFields) (*model.Series, error) {
	var venueID sql.NullInt64
	if f.VenueID != nil {
		venueID = sql.NullInt64{Int64: *f.VenueID, Valid: true}
	}
	var eventType sql.NullString
	if f.EventType != "" {
		eventType = sql.NullString{String: f.EventType, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO series (title, description, rrule, city_id, venue_id, start_hour, start_minute, duration_min, horizon_months, slug_base, event_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Title, f.Description, f.RRule, f.CityID, venueID,
		nullInt(f.StartHour), nullInt(f.StartMinute), nullInt(f.DurationMin), nullInt(f.HorizonMonths),
		f.SlugBase, eventType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert series: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *SeriesStore) GetByID(id int64) (*model.Series, error) {
	row := s.db.QueryRow(selectSeries+` WHERE id = ?`, id)
	ser, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query series %d: %w", id, err)
	}
	return ser, nil
}

func (s *SeriesStore) List() ([]model.Series, error) {
	rows, err := s.db.Query(selectSeries + ` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var list []model.Series
	for rows.Next() {
		ser, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		list = append(list, *ser)
	}
	return list, rows.Err()
}

// UpdateWatermark advances last_generated_through after a successful
// generation run. It is the only series mutation the materializer performs.
func (s *SeriesStore) UpdateWatermark(id int64, through time.Time) error {
	_, err := s.db.Exec(
		`UPDATE series SET last_generated_through = ?, updated_at = ? WHERE id = ?`,
		through.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update series %d watermark: %w", id, err)
	}
	return nil
}

const selectSeries = `SELECT id, title, description, rrule, city_id, venue_id, start_hour, start_minute, duration_min, horizon_months, slug_base, event_type, last_generated_through, created_at, updated_at
 FROM series`

// scanSeries normalizes a raw row into the one canonical Series shape:
// NULL columns take the documented defaults, so callers never branch on
// missing values.
func scanSeries(row rowScanner) (*model.Series, error) {
	var ser model.Series
	var venueID sql.NullInt64
	var startHour, startMinute, durationMin, horizonMonths sql.NullInt64
	var eventType sql.NullString
	var through sql.NullTime

	err := row.Scan(&ser.ID, &ser.Title, &ser.Description, &ser.RRule, &ser.CityID,
		&venueID, &startHour, &startMinute, &durationMin, &horizonMonths,
		&ser.SlugBase, &eventType, &through, &ser.CreatedAt, &ser.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if venueID.Valid {
		ser.VenueID = &venueID.Int64
	}
	ser.StartHour = intOrDefault(startHour, model.DefaultStartHour)
	ser.StartMinute = intOrDefault(startMinute, model.DefaultStartMinute)
	ser.DurationMin = intOrDefault(durationMin, model.DefaultDurationMin)
	ser.HorizonMonths = intOrDefault(horizonMonths, model.DefaultHorizonMonths)
	ser.EventType = model.TypeMeet
	if eventType.Valid && eventType.String != "" {
		ser.EventType = eventType.String
	}
	if through.Valid {
		t := through.Time
		ser.LastGeneratedThrough = &t
	}
	return &ser, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intOrDefault(v sql.NullInt64, def int) int {
	if v.Valid {
		return int(v.Int64)
	}
	return def
}
