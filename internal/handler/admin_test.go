package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"showcal/internal/database"
	"showcal/internal/importer"
	"showcal/internal/materialize"
	"showcal/internal/model"
	"showcal/internal/search"
	"showcal/internal/store"
)

func setupAdminHandler(t *testing.T) (*AdminHandler, *sql.DB, *model.City) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cities := store.NewCityStore(db)
	city, err := cities.Create("Rochester", "rochester", "NY")
	if err != nil {
		t.Fatalf("create city: %v", err)
	}

	series := store.NewSeriesStore(db)
	events := store.NewEventStore(db)
	venues := store.NewVenueStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewAdminHandler(
		series, events, venues,
		materialize.New(series, events, nil, logger),
		search.NewIndex(db),
		importer.New(cities, venues, events, logger),
		t.TempDir(),
		logger,
	)
	return h, db, city
}

func TestCreateSeriesAndGenerate(t *testing.T) {
	h, db, city := setupAdminHandler(t)

	body := `{
		"title": "Cars and Coffee",
		"rrule": "FREQ=WEEKLY;BYDAY=SA",
		"city_id": ` + jsonInt(city.ID) + `,
		"slug_base": "cars-and-coffee"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/series", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.CreateSeries(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Series model.Series `json:"series"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Series.StartHour != model.DefaultStartHour {
		t.Errorf("StartHour = %d, want default %d", created.Series.StartHour, model.DefaultStartHour)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/generate", nil)
	w = httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", w.Code, w.Body.String())
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count == 0 {
		t.Error("generate produced no events")
	}

	// The generate run also rebuilds the search projection.
	if err := db.QueryRow(`SELECT COUNT(*) FROM search_index`).Scan(&count); err != nil {
		t.Fatalf("count search rows: %v", err)
	}
	if count == 0 {
		t.Error("generate did not rebuild the search index")
	}
}

func TestCreateSeriesValidation(t *testing.T) {
	h, _, _ := setupAdminHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/series",
		strings.NewReader(`{"title": "No rule"}`))
	w := httptest.NewRecorder()
	h.CreateSeries(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImportVenuesEndpoint(t *testing.T) {
	h, db, _ := setupAdminHandler(t)

	csv := "slug,name,address,city_slug,lat,lng\n" +
		"marketplace-mall,Marketplace Mall,1 Miracle Mile Dr,rochester,,\n"
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import/venues", strings.NewReader(csv))
	w := httptest.NewRecorder()
	h.ImportVenues(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var sum importer.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sum.Imported != 1 {
		t.Errorf("summary = %+v", sum)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM venues`).Scan(&count); err != nil {
		t.Fatalf("count venues: %v", err)
	}
	if count != 1 {
		t.Errorf("venue count = %d", count)
	}
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
