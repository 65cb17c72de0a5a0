package importer

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"showcal/internal/database"
	"showcal/internal/model"
	"showcal/internal/store"
)

func setupTest(t *testing.T) (*Importer, *store.VenueStore, *store.EventStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cities := store.NewCityStore(db)
	venues := store.NewVenueStore(db)
	events := store.NewEventStore(db)

	if _, err := cities.Create("Rochester", "rochester", "NY"); err != nil {
		t.Fatalf("create city: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cities, venues, events, logger), venues, events
}

func TestImportVenues(t *testing.T) {
	imp, venues, _ := setupTest(t)

	csv := `slug,name,address,city_slug,lat,lng
marketplace-mall,Marketplace Mall,1 Miracle Mile Dr,rochester,43.0868,-77.6214
no-coords,No Coords Lot,,rochester,,
orphan,Orphan Venue,,nowhere,,
`
	sum, err := imp.ImportVenues(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.Imported != 2 || sum.Skipped != 1 {
		t.Errorf("summary = %+v, want 2 imported, 1 skipped", sum)
	}

	v, err := venues.GetBySlug("marketplace-mall")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v == nil {
		t.Fatal("venue not imported")
	}
	if v.Lat == nil || *v.Lat != 43.0868 {
		t.Errorf("lat = %v", v.Lat)
	}

	noCoords, err := venues.GetBySlug("no-coords")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if noCoords == nil || noCoords.Lat != nil {
		t.Errorf("empty coordinates should stay nil: %+v", noCoords)
	}
}

func TestImportVenuesIsIdempotent(t *testing.T) {
	imp, venues, _ := setupTest(t)

	csv := "slug,name,address,city_slug,lat,lng\n" +
		"marketplace-mall,Marketplace Mall,1 Miracle Mile Dr,rochester,,\n"
	if _, err := imp.ImportVenues(strings.NewReader(csv)); err != nil {
		t.Fatalf("first import: %v", err)
	}

	// Re-import with a changed name: update in place.
	csv = "slug,name,address,city_slug,lat,lng\n" +
		"marketplace-mall,Marketplace Mall (renamed),1 Miracle Mile Dr,rochester,,\n"
	if _, err := imp.ImportVenues(strings.NewReader(csv)); err != nil {
		t.Fatalf("second import: %v", err)
	}

	list, err := venues.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d venues, want 1", len(list))
	}
	if list[0].Name != "Marketplace Mall (renamed)" {
		t.Errorf("name = %q", list[0].Name)
	}
}

func TestImportEvents(t *testing.T) {
	imp, _, events := setupTest(t)

	csv := `slug,title,description,start,end,city_slug,venue_slug,event_type
swap-meet-2025-09-20,Fall Swap Meet,Bring parts,2025-09-20T09:00:00-04:00,2025-09-20T15:00:00-04:00,rochester,,SHOW
bare-date-event,Bare Date,,2025-09-21,2025-09-22,rochester,,
bad-date,Bad,,whenever,2025-09-22,rochester,,SHOW
unknown-city,Lost,,2025-09-20,2025-09-21,nowhere,,SHOW
`
	sum, err := imp.ImportEvents(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.Imported != 2 || sum.Skipped != 2 {
		t.Errorf("summary = %+v, want 2 imported, 2 skipped", sum)
	}

	ev, err := events.GetBySlug("swap-meet-2025-09-20")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev == nil {
		t.Fatal("event not imported")
	}
	if ev.Source != model.SourceImport {
		t.Errorf("source = %q", ev.Source)
	}
	if ev.EventType != model.TypeShow {
		t.Errorf("event type = %q", ev.EventType)
	}
	wantStart := time.Date(2025, time.September, 20, 13, 0, 0, 0, time.UTC)
	if !ev.StartAt.Equal(wantStart) {
		t.Errorf("start = %v, want %v", ev.StartAt, wantStart)
	}

	// A bare date is UTC midnight, and a blank type defaults to MEET.
	bare, err := events.GetBySlug("bare-date-event")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if bare == nil {
		t.Fatal("bare date event not imported")
	}
	if !bare.StartAt.Equal(time.Date(2025, time.September, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bare date start = %v", bare.StartAt)
	}
	if bare.EventType != model.TypeMeet {
		t.Errorf("default event type = %q", bare.EventType)
	}
}
