package handler

import (
	"log/slog"
	"net/http"

	"showcal/internal/eastern"
	"showcal/internal/feed"
	"showcal/internal/model"
	"showcal/internal/seo"
	"showcal/internal/store"
)

// EventHandler serves the public listing endpoints.
type EventHandler struct {
	events  *store.EventStore
	venues  *store.VenueStore
	cities  *store.CityStore
	baseURL string
	logger  *slog.Logger
}

func NewEventHandler(events *store.EventStore, venues *store.VenueStore, cities *store.CityStore, baseURL string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events:  events,
		venues:  venues,
		cities:  cities,
		baseURL: baseURL,
		logger:  logger,
	}
}

// List handles GET /api/events?start=...&end=... Both bounds are required;
// they accept RFC3339 or bare YYYY-MM-DD (UTC midnight).
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	start, ok := eastern.ParseFlexible(r.URL.Query().Get("start"))
	if !ok {
		writeError(w, http.StatusBadRequest, "start must be RFC3339 or YYYY-MM-DD")
		return
	}
	end, ok := eastern.ParseFlexible(r.URL.Query().Get("end"))
	if !ok {
		writeError(w, http.StatusBadRequest, "end must be RFC3339 or YYYY-MM-DD")
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	list, err := h.events.ListPublishedBetween(start, end)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if list == nil {
		list = []model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": list})
}

// Week handles GET /api/events/week?date=... and returns the Eastern week
// (Monday through Sunday) containing the date, defaulting to now.
func (h *EventHandler) Week(w http.ResponseWriter, r *http.Request) {
	at := eastern.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, ok := eastern.ParseFlexible(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "date must be RFC3339 or YYYY-MM-DD")
			return
		}
		at = parsed
	}

	start := eastern.StartOfWeek(at)
	end := eastern.EndOfWeek(at)

	list, err := h.events.ListPublishedBetween(start, end)
	if err != nil {
		h.logger.Error("list week events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if list == nil {
		list = []model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week_of": eastern.DateString(start),
		"events":  list,
	})
}

// Get handles GET /api/events/{slug} and embeds the JSON-LD node the event
// page renders into its head.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	ev, err := h.events.GetBySlug(slug)
	if err != nil {
		h.logger.Error("get event", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if ev == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	var venue *model.Venue
	if ev.VenueID != nil {
		venue, err = h.venues.GetByID(*ev.VenueID)
		if err != nil {
			h.logger.Error("get event venue", "slug", slug, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get event")
			return
		}
	}
	city, err := h.cities.GetByID(ev.CityID)
	if err != nil {
		h.logger.Error("get event city", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":   ev,
		"venue":   venue,
		"city":    city,
		"json_ld": seo.EventNode(*ev, venue, city, h.baseURL),
	})
}

// Feed handles GET /calendar.ics with the next 90 days of published events.
func (h *EventHandler) Feed(w http.ResponseWriter, r *http.Request) {
	now := eastern.Now()
	list, err := h.events.ListPublishedBetween(now, now.AddDate(0, 0, 90))
	if err != nil {
		h.logger.Error("list feed events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build feed")
		return
	}

	cal := feed.Calendar(list, "-//showcal//EN")
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		h.logger.Error("write feed", "error", err)
	}
}
