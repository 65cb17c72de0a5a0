package handler

import (
	"log/slog"
	"net/http"
	"time"

	"showcal/internal/model"
	"showcal/internal/store"
)

// VenueHandler serves the public venue and city endpoints.
type VenueHandler struct {
	venues *store.VenueStore
	cities *store.CityStore
	events *store.EventStore
	logger *slog.Logger
}

func NewVenueHandler(venues *store.VenueStore, cities *store.CityStore, events *store.EventStore, logger *slog.Logger) *VenueHandler {
	return &VenueHandler{
		venues: venues,
		cities: cities,
		events: events,
		logger: logger,
	}
}

// List handles GET /api/venues, optionally filtered by ?city=<slug>.
func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []model.Venue
		err  error
	)
	if citySlug := r.URL.Query().Get("city"); citySlug != "" {
		city, cerr := h.cities.GetBySlug(citySlug)
		if cerr != nil {
			h.logger.Error("get city", "slug", citySlug, "error", cerr)
			writeError(w, http.StatusInternalServerError, "failed to list venues")
			return
		}
		if city == nil {
			writeError(w, http.StatusNotFound, "city not found")
			return
		}
		list, err = h.venues.ListByCity(city.ID)
	} else {
		list, err = h.venues.List()
	}
	if err != nil {
		h.logger.Error("list venues", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list venues")
		return
	}
	if list == nil {
		list = []model.Venue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"venues": list})
}

// Get handles GET /api/venues/{slug} and includes the venue's upcoming
// published events.
func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	venue, err := h.venues.GetBySlug(slug)
	if err != nil {
		h.logger.Error("get venue", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get venue")
		return
	}
	if venue == nil {
		writeError(w, http.StatusNotFound, "venue not found")
		return
	}

	upcoming, err := h.events.ListByVenue(venue.ID, time.Now().UTC())
	if err != nil {
		h.logger.Error("list venue events", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get venue")
		return
	}
	if upcoming == nil {
		upcoming = []model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"venue":    venue,
		"upcoming": upcoming,
	})
}

// ListCities handles GET /api/cities.
func (h *VenueHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	list, err := h.cities.List()
	if err != nil {
		h.logger.Error("list cities", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list cities")
		return
	}
	if list == nil {
		list = []model.City{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": list})
}
