package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"showcal/internal/eastern"
	"showcal/internal/export"
	"showcal/internal/importer"
	"showcal/internal/materialize"
	"showcal/internal/model"
	"showcal/internal/search"
	"showcal/internal/store"
)

// AdminHandler serves the authenticated management endpoints: series CRUD,
// generation runs, reindexing, CSV imports, and the static export.
type AdminHandler struct {
	series       *store.SeriesStore
	events       *store.EventStore
	venues       *store.VenueStore
	materializer *materialize.Materializer
	index        *search.Index
	importer     *importer.Importer
	exportDir    string
	logger       *slog.Logger
}

func NewAdminHandler(
	series *store.SeriesStore,
	events *store.EventStore,
	venues *store.VenueStore,
	materializer *materialize.Materializer,
	index *search.Index,
	imp *importer.Importer,
	exportDir string,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		series:       series,
		events:       events,
		venues:       venues,
		materializer: materializer,
		index:        index,
		importer:     imp,
		exportDir:    exportDir,
		logger:       logger,
	}
}

type createSeriesRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	RRule         string `json:"rrule"`
	CityID        int64  `json:"city_id"`
	VenueID       *int64 `json:"venue_id"`
	StartHour     *int   `json:"start_hour"`
	StartMinute   *int   `json:"start_minute"`
	DurationMin   *int   `json:"duration_min"`
	HorizonMonths *int   `json:"horizon_months"`
	SlugBase      string `json:"slug_base"`
	EventType     string `json:"event_type"`
}

// CreateSeries handles POST /api/admin/series. Omitted numeric fields stay
// NULL in the row and take the documented defaults on read.
func (h *AdminHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || req.RRule == "" || req.SlugBase == "" || req.CityID == 0 {
		writeError(w, http.StatusBadRequest, "title, rrule, slug_base, and city_id are required")
		return
	}

	ser, err := h.series.Create(store.SeriesFields{
		Title:         req.Title,
		Description:   req.Description,
		RRule:         req.RRule,
		CityID:        req.CityID,
		VenueID:       req.VenueID,
		StartHour:     req.StartHour,
		StartMinute:   req.StartMinute,
		DurationMin:   req.DurationMin,
		HorizonMonths: req.HorizonMonths,
		SlugBase:      req.SlugBase,
		EventType:     req.EventType,
	})
	if err != nil {
		h.logger.Error("create series", "slug_base", req.SlugBase, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create series")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"series": ser})
}

// ListSeries handles GET /api/admin/series.
func (h *AdminHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	list, err := h.series.List()
	if err != nil {
		h.logger.Error("list series", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list series")
		return
	}
	if list == nil {
		list = []model.Series{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": list})
}

// GetSeries handles GET /api/admin/series/{id} and includes the events the
// series has generated.
func (h *AdminHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	ser, err := h.series.GetByID(id)
	if err != nil {
		h.logger.Error("get series", "series_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	if ser == nil {
		writeError(w, http.StatusNotFound, "series not found")
		return
	}

	generated, err := h.events.ListBySeries(id)
	if err != nil {
		h.logger.Error("list series events", "series_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	if generated == nil {
		generated = []model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"series": ser,
		"events": generated,
	})
}

// Generate handles POST /api/admin/generate: a full generation run followed
// by a search reindex.
func (h *AdminHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := h.materializer.GenerateAll(r.Context()); err != nil {
		h.logger.Error("generate all", "error", err)
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}
	if err := h.index.Rebuild(); err != nil {
		h.logger.Error("reindex after generate", "error", err)
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "generated"})
}

// GenerateSeries handles POST /api/admin/series/{id}/generate.
func (h *AdminHandler) GenerateSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.materializer.Generate(r.Context(), id); err != nil {
		h.logger.Error("generate series", "series_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}
	if err := h.index.Rebuild(); err != nil {
		h.logger.Error("reindex after generate", "error", err)
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "generated"})
}

// Reindex handles POST /api/admin/reindex.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Rebuild(); err != nil {
		h.logger.Error("reindex", "error", err)
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reindexed"})
}

// ImportVenues handles POST /api/admin/import/venues with a CSV body.
func (h *AdminHandler) ImportVenues(w http.ResponseWriter, r *http.Request) {
	sum, err := h.importer.ImportVenues(r.Body)
	if err != nil {
		h.logger.Error("import venues", "error", err)
		writeError(w, http.StatusBadRequest, "venue import failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ImportEvents handles POST /api/admin/import/events with a CSV body.
func (h *AdminHandler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	sum, err := h.importer.ImportEvents(r.Body)
	if err != nil {
		h.logger.Error("import events", "error", err)
		writeError(w, http.StatusBadRequest, "event import failed: "+err.Error())
		return
	}
	if err := h.index.Rebuild(); err != nil {
		h.logger.Error("reindex after import", "error", err)
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Export handles POST /api/admin/export: writes the static weekly listing
// files the published site is built from.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	weeks := 26
	start := time.Now()
	if err := export.WriteWeekly(h.exportDir, h.events, h.venues, eastern.Now(), weeks); err != nil {
		h.logger.Error("export", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	h.logger.Info("static export written",
		"dir", h.exportDir, "weeks", weeks, "duration", time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "exported",
		"weeks":  weeks,
		"dir":    h.exportDir,
	})
}
