// Package importer loads venue and event CSVs exported from the old
// spreadsheet workflow and upserts them by slug, so re-imports converge.
//
// CSV is parsed with the standard library: nothing in the stack needs more
// than plain comma-separated records with a header row.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"showcal/internal/eastern"
	"showcal/internal/model"
	"showcal/internal/store"
)

type Importer struct {
	cities *store.CityStore
	venues *store.VenueStore
	events *store.EventStore
	logger *slog.Logger
}

func New(cityStore *store.CityStore, venueStore *store.VenueStore, eventStore *store.EventStore, logger *slog.Logger) *Importer {
	return &Importer{
		cities: cityStore,
		venues: venueStore,
		events: eventStore,
		logger: logger,
	}
}

// Summary reports what an import run did.
type Summary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportVenues reads records of the form
//
//	slug,name,address,city_slug,lat,lng
//
// after a header row. Rows referencing an unknown city are skipped, not
// fatal.
func (im *Importer) ImportVenues(r io.Reader) (Summary, error) {
	var sum Summary

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	if _, err := cr.Read(); err != nil {
		return sum, fmt.Errorf("read venue header: %w", err)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read venue row: %w", err)
		}

		city, err := im.cities.GetBySlug(rec[3])
		if err != nil {
			return sum, err
		}
		if city == nil {
			im.logger.Warn("venue row references unknown city, skipping",
				"venue_slug", rec[0], "city_slug", rec[3])
			sum.Skipped++
			continue
		}

		if _, err := im.venues.Upsert(city.ID, rec[1], rec[0], rec[2],
			parseCoord(rec[4]), parseCoord(rec[5])); err != nil {
			return sum, err
		}
		sum.Imported++
	}
	return sum, nil
}

// ImportEvents reads records of the form
//
//	slug,title,description,start,end,city_slug,venue_slug,event_type
//
// after a header row. Dates follow the flexible parsing policy: offset
// strings as given, bare dates as UTC midnight. Rows with unparseable dates
// or an unknown city are skipped and counted, not fatal.
func (im *Importer) ImportEvents(r io.Reader) (Summary, error) {
	var sum Summary

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 8

	if _, err := cr.Read(); err != nil {
		return sum, fmt.Errorf("read event header: %w", err)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read event row: %w", err)
		}

		startAt, ok := eastern.ParseFlexible(rec[3])
		if !ok {
			im.logger.Warn("event row has unparseable start, skipping",
				"slug", rec[0], "start", rec[3])
			sum.Skipped++
			continue
		}
		endAt, ok := eastern.ParseFlexible(rec[4])
		if !ok {
			im.logger.Warn("event row has unparseable end, skipping",
				"slug", rec[0], "end", rec[4])
			sum.Skipped++
			continue
		}

		city, err := im.cities.GetBySlug(rec[5])
		if err != nil {
			return sum, err
		}
		if city == nil {
			im.logger.Warn("event row references unknown city, skipping",
				"slug", rec[0], "city_slug", rec[5])
			sum.Skipped++
			continue
		}

		var venueID *int64
		if rec[6] != "" {
			venue, err := im.venues.GetBySlug(rec[6])
			if err != nil {
				return sum, err
			}
			if venue != nil {
				venueID = &venue.ID
			}
		}

		eventType := rec[7]
		if eventType == "" {
			eventType = model.TypeMeet
		}

		if _, err := im.events.Upsert(store.EventFields{
			Slug:        rec[0],
			Title:       rec[1],
			Description: rec[2],
			StartAt:     startAt,
			EndAt:       endAt,
			CityID:      city.ID,
			VenueID:     venueID,
			Status:      model.StatusPublished,
			EventType:   eventType,
			Source:      model.SourceImport,
		}); err != nil {
			return sum, err
		}
		sum.Imported++
	}
	return sum, nil
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
