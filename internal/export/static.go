// Package export writes the static JSON files the published site is built
// from: one listing file per Eastern week plus a venues index.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"showcal/internal/eastern"
	"showcal/internal/model"
	"showcal/internal/store"
)

type weekFile struct {
	WeekOf string        `json:"week_of"`
	Events []model.Event `json:"events"`
}

type venuesFile struct {
	Venues []model.Venue `json:"venues"`
}

// WriteWeekly writes weeks consecutive week files starting from the Eastern
// week containing from, named week-YYYY-MM-DD.json after the Monday that
// starts each week, plus venues.json.
func WriteWeekly(dir string, events *store.EventStore, venues *store.VenueStore, from time.Time, weeks int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	cur := eastern.StartOfWeek(from)
	for i := 0; i < weeks; i++ {
		end := eastern.EndOfWeek(cur)

		list, err := events.ListPublishedBetween(cur, end)
		if err != nil {
			return err
		}
		if list == nil {
			list = []model.Event{}
		}

		name := "week-" + eastern.DateString(cur) + ".json"
		if err := writeJSONFile(filepath.Join(dir, name), weekFile{
			WeekOf: eastern.DateString(cur),
			Events: list,
		}); err != nil {
			return err
		}

		cur = end
	}

	vlist, err := venues.List()
	if err != nil {
		return err
	}
	if vlist == nil {
		vlist = []model.Venue{}
	}
	return writeJSONFile(filepath.Join(dir, "venues.json"), venuesFile{Venues: vlist})
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
