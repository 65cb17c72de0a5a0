package store

import (
	"database/sql"
	"fmt"

	"showcal/internal/model"
)

type CityStore struct {
	db *sql.DB
}

func NewCityStore(db *sql.DB) *CityStore {
	return &CityStore{db: db}
}

func (s *CityStore) Create(name, slug, state string) (*model.City, error) {
	result, err := s.db.Exec(
		`INSERT INTO cities (name, slug, state) VALUES (?, ?, ?)`,
		name, slug, state,
	)
	if err != nil {
		return nil, fmt.Errorf("insert city: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CityStore) GetByID(id int64) (*model.City, error) {
	row := s.db.QueryRow(selectCity+` WHERE id = ?`, id)
	return oneCity(row)
}

func (s *CityStore) GetBySlug(slug string) (*model.City, error) {
	row := s.db.QueryRow(selectCity+` WHERE slug = ?`, slug)
	return oneCity(row)
}

func (s *CityStore) List() ([]model.City, error) {
	rows, err := s.db.Query(selectCity + ` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.State, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

const selectCity = `SELECT id, name, slug, state, created_at, updated_at
 FROM cities`

func oneCity(row rowScanner) (*model.City, error) {
	var c model.City
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.State, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query city: %w", err)
	}
	return &c, nil
}
