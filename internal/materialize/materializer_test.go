package materialize

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"showcal/internal/database"
	"showcal/internal/model"
	"showcal/internal/store"
)

// fixedNow pins the generation window to mid-January 2025: the window runs
// from 2025-01-01 Eastern midnight through 2025-07-01 end of day.
var fixedNow = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func setupTest(t *testing.T) (*Materializer, *store.SeriesStore, *store.EventStore, *model.City) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	city, err := store.NewCityStore(db).Create("Rochester", "rochester", "NY")
	if err != nil {
		t.Fatalf("create city: %v", err)
	}

	seriesStore := store.NewSeriesStore(db)
	eventStore := store.NewEventStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := New(seriesStore, eventStore, nil, logger)
	m.now = func() time.Time { return fixedNow }

	return m, seriesStore, eventStore, city
}

func createSeries(t *testing.T, seriesStore *store.SeriesStore, f store.SeriesFields) *model.Series {
	t.Helper()
	ser, err := seriesStore.Create(f)
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	return ser
}

func TestGenerateWeeklySeries(t *testing.T) {
	m, seriesStore, eventStore, city := setupTest(t)

	ser := createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Cars and Coffee",
		RRule:    "FREQ=WEEKLY;BYDAY=SA",
		CityID:   city.ID,
		SlugBase: "cars-and-coffee",
	})

	if err := m.Generate(context.Background(), ser.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	events, err := eventStore.ListBySeries(ser.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// Saturdays from 2025-01-04 through 2025-06-28 inclusive.
	if len(events) != 26 {
		t.Fatalf("got %d events, want 26", len(events))
	}

	first := events[0]
	if first.Slug != "cars-and-coffee-2025-01-04" {
		t.Errorf("first slug = %q", first.Slug)
	}
	// 08:00 EST on 2025-01-04 is 13:00 UTC.
	wantStart := time.Date(2025, time.January, 4, 13, 0, 0, 0, time.UTC)
	if !first.StartAt.Equal(wantStart) {
		t.Errorf("first start = %v, want %v", first.StartAt, wantStart)
	}
	if !first.EndAt.Equal(wantStart.Add(240 * time.Minute)) {
		t.Errorf("first end = %v, want start+240m", first.EndAt)
	}
	if first.Status != model.StatusPublished {
		t.Errorf("status = %q", first.Status)
	}
	if first.Source != model.SourceSeries {
		t.Errorf("source = %q", first.Source)
	}
	if first.SeriesID == nil || *first.SeriesID != ser.ID {
		t.Errorf("series_id = %v, want %d", first.SeriesID, ser.ID)
	}

	// Either side of the March transition: 08:00 Eastern is 13:00 UTC on
	// standard time, 12:00 UTC on daylight time.
	byDate := map[string]time.Time{}
	for _, ev := range events {
		byDate[ev.Slug] = ev.StartAt
	}
	if got := byDate["cars-and-coffee-2025-03-08"]; got.Hour() != 13 {
		t.Errorf("pre-transition start hour = %d UTC, want 13", got.Hour())
	}
	if got := byDate["cars-and-coffee-2025-03-15"]; got.Hour() != 12 {
		t.Errorf("post-transition start hour = %d UTC, want 12", got.Hour())
	}
}

func TestGenerateMonthlyNthWeekday(t *testing.T) {
	m, seriesStore, eventStore, city := setupTest(t)

	ser := createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Second Saturday Show",
		RRule:    "FREQ=MONTHLY;BYDAY=+2SA",
		CityID:   city.ID,
		SlugBase: "second-saturday",
	})

	if err := m.Generate(context.Background(), ser.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	events, err := eventStore.ListBySeries(ser.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// Second Saturdays: Jan 11, Feb 8, Mar 8, Apr 12, May 10, Jun 14.
	// July's (the 12th) falls past the horizon day of July 1.
	want := []string{
		"second-saturday-2025-01-11",
		"second-saturday-2025-02-08",
		"second-saturday-2025-03-08",
		"second-saturday-2025-04-12",
		"second-saturday-2025-05-10",
		"second-saturday-2025-06-14",
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Slug != want[i] {
			t.Errorf("event %d slug = %q, want %q", i, ev.Slug, want[i])
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	m, seriesStore, eventStore, city := setupTest(t)

	ser := createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Cars and Coffee",
		RRule:    "FREQ=WEEKLY;BYDAY=SA",
		CityID:   city.ID,
		SlugBase: "cars-and-coffee",
	})

	if err := m.Generate(context.Background(), ser.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstRun, err := eventStore.ListBySeries(ser.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if err := m.Generate(context.Background(), ser.ID); err != nil {
		t.Fatalf("second run: %v", err)
	}
	secondRun, err := eventStore.ListBySeries(ser.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(secondRun) != len(firstRun) {
		t.Fatalf("second run changed count: %d -> %d", len(firstRun), len(secondRun))
	}
	for i := range firstRun {
		if secondRun[i].ID != firstRun[i].ID {
			t.Errorf("event %d got a new ID: %d -> %d", i, firstRun[i].ID, secondRun[i].ID)
		}
	}
}

func TestLateStartSlugUsesEasternDate(t *testing.T) {
	m, seriesStore, eventStore, city := setupTest(t)

	// 23:00 Eastern crosses into the next UTC day; the slug must carry the
	// Eastern date.
	hour := 23
	ser := createSeries(t, seriesStore, store.SeriesFields{
		Title:     "Night Cruise",
		RRule:     "FREQ=WEEKLY;BYDAY=SA",
		CityID:    city.ID,
		StartHour: &hour,
		SlugBase:  "night-cruise",
		EventType: model.TypeCruise,
	})

	if err := m.Generate(context.Background(), ser.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	ev, err := eventStore.GetBySlug("night-cruise-2025-01-04")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev == nil {
		t.Fatal("expected event night-cruise-2025-01-04")
	}
	// 23:00 EST on Jan 4 is 04:00 UTC on Jan 5.
	wantStart := time.Date(2025, time.January, 5, 4, 0, 0, 0, time.UTC)
	if !ev.StartAt.Equal(wantStart) {
		t.Errorf("start = %v, want %v", ev.StartAt, wantStart)
	}
}

func TestGenerateUpdatesWatermark(t *testing.T) {
	m, seriesStore, _, city := setupTest(t)

	ser := createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Cars and Coffee",
		RRule:    "FREQ=WEEKLY;BYDAY=SA",
		CityID:   city.ID,
		SlugBase: "cars-and-coffee",
	})

	if err := m.Generate(context.Background(), ser.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := seriesStore.GetByID(ser.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastGeneratedThrough == nil {
		t.Fatal("watermark not set")
	}
	// End of day July 1 Eastern (EDT) is 03:59:59.999 UTC on July 2.
	want := time.Date(2025, time.July, 2, 3, 59, 59, 0, time.UTC)
	diff := got.LastGeneratedThrough.Sub(want)
	if diff < 0 || diff >= time.Second {
		t.Errorf("watermark = %v, want end of 2025-07-01 Eastern", got.LastGeneratedThrough)
	}
}

func TestGenerateMissingSeriesIsNoOp(t *testing.T) {
	m, _, _, _ := setupTest(t)

	if err := m.Generate(context.Background(), 999); err != nil {
		t.Errorf("missing series should not error, got %v", err)
	}
}

func TestGenerateAllIsolatesBadRule(t *testing.T) {
	m, seriesStore, eventStore, city := setupTest(t)

	good := createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Good",
		RRule:    "FREQ=WEEKLY;BYDAY=SA",
		CityID:   city.ID,
		SlugBase: "good",
	})
	createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Bad",
		RRule:    "FREQ=BOGUS",
		CityID:   city.ID,
		SlugBase: "bad",
	})

	err := m.GenerateAll(context.Background())
	if err == nil {
		t.Fatal("expected error from the bad rule")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error does not name the failing series: %v", err)
	}

	// The good series must still have generated despite the failure.
	events, listErr := eventStore.ListBySeries(good.ID)
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(events) == 0 {
		t.Error("good series generated no events")
	}
}

func TestGenerateCanceledContext(t *testing.T) {
	m, seriesStore, _, city := setupTest(t)

	ser := createSeries(t, seriesStore, store.SeriesFields{
		Title:    "Cars and Coffee",
		RRule:    "FREQ=WEEKLY;BYDAY=SA",
		CityID:   city.ID,
		SlugBase: "cars-and-coffee",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Generate(ctx, ser.ID); err == nil {
		t.Error("expected context error")
	}
}
