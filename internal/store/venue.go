package store

import (
	"database/sql"
	"fmt"

	"showcal/internal/model"
)

type VenueStore struct {
	db *sql.DB
}

func NewVenueStore(db *sql.DB) *VenueStore {
	return &VenueStore{db: db}
}

func (s *VenueStore) Create(cityID int64, name, slug, address string, lat, lng *float64) (*model.Venue, error) {
	result, err := s.db.Exec(
		`INSERT INTO venues (city_id, name, slug, address, lat, lng) VALUES (?, ?, ?, ?, ?, ?)`,
		cityID, name, slug, address, nullFloat(lat), nullFloat(lng),
	)
	if err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Upsert creates a venue or updates it in place, keyed by slug. Used by the
// CSV importer so re-imports converge.
func (s *VenueStore) Upsert(cityID int64, name, slug, address string, lat, lng *float64) (*model.Venue, error) {
	_, err := s.db.Exec(
		`INSERT INTO venues (city_id, name, slug, address, lat, lng)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			city_id = excluded.city_id,
			name = excluded.name,
			address = excluded.address,
			lat = excluded.lat,
			lng = excluded.lng,
			updated_at = CURRENT_TIMESTAMP`,
		cityID, name, slug, address, nullFloat(lat), nullFloat(lng),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert venue %q: %w", slug, err)
	}
	return s.GetBySlug(slug)
}

func (s *VenueStore) GetByID(id int64) (*model.Venue, error) {
	row := s.db.QueryRow(selectVenue+` WHERE id = ?`, id)
	return oneVenue(row)
}

func (s *VenueStore) GetBySlug(slug string) (*model.Venue, error) {
	row := s.db.QueryRow(selectVenue+` WHERE slug = ?`, slug)
	return oneVenue(row)
}

func (s *VenueStore) List() ([]model.Venue, error) {
	rows, err := s.db.Query(selectVenue + ` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query venues: %w", err)
	}
	return collectVenues(rows)
}

func (s *VenueStore) ListByCity(cityID int64) ([]model.Venue, error) {
	rows, err := s.db.Query(selectVenue+` WHERE city_id = ? ORDER BY name ASC`, cityID)
	if err != nil {
		return nil, fmt.Errorf("query city venues: %w", err)
	}
	return collectVenues(rows)
}

const selectVenue = `SELECT id, city_id, name, slug, address, lat, lng, created_at, updated_at
 FROM venues`

func scanVenue(row rowScanner) (*model.Venue, error) {
	var v model.Venue
	var lat, lng sql.NullFloat64

	err := row.Scan(&v.ID, &v.CityID, &v.Name, &v.Slug, &v.Address, &lat, &lng,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lat.Valid {
		v.Lat = &lat.Float64
	}
	if lng.Valid {
		v.Lng = &lng.Float64
	}
	return &v, nil
}

func oneVenue(row rowScanner) (*model.Venue, error) {
	v, err := scanVenue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query venue: %w", err)
	}
	return v, nil
}

func collectVenues(rows *sql.Rows) ([]model.Venue, error) {
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, *v)
	}
	return venues, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
