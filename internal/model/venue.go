package model

import "time"

// Venue is a physical location events happen at: a parking lot, fairground,
// or drive-in.
type Venue struct {
	ID        int64     `json:"id"`
	CityID    int64     `json:"city_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
