// Package server wires the stores, handlers, and middleware into the HTTP
// router.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"showcal/internal/config"
	"showcal/internal/handler"
	"showcal/internal/importer"
	"showcal/internal/materialize"
	"showcal/internal/middleware"
	"showcal/internal/search"
	"showcal/internal/store"
	ws "showcal/internal/websocket"
)

type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	Hub          *ws.Hub
	Events       *store.EventStore
	Venues       *store.VenueStore
	Cities       *store.CityStore
	Series       *store.SeriesStore
	Materializer *materialize.Materializer
	Index        *search.Index

	eventHandler  *handler.EventHandler
	venueHandler  *handler.VenueHandler
	searchHandler *handler.SearchHandler
	adminHandler  *handler.AdminHandler

	limiter *middleware.RateLimiter
}

func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)

	events := store.NewEventStore(db)
	venues := store.NewVenueStore(db)
	cities := store.NewCityStore(db)
	series := store.NewSeriesStore(db)

	mat := materialize.New(series, events, hub, logger)
	index := search.NewIndex(db)
	imp := importer.New(cities, venues, events, logger)

	return &Server{
		cfg:    cfg,
		logger: logger,

		Hub:          hub,
		Events:       events,
		Venues:       venues,
		Cities:       cities,
		Series:       series,
		Materializer: mat,
		Index:        index,

		eventHandler:  handler.NewEventHandler(events, venues, cities, cfg.BaseURL, logger),
		venueHandler:  handler.NewVenueHandler(venues, cities, events, logger),
		searchHandler: handler.NewSearchHandler(index, logger),
		adminHandler: handler.NewAdminHandler(series, events, venues, mat, index, imp,
			cfg.ExportDir, logger),

		limiter: middleware.NewRateLimiter(),
	}
}

// Router builds the full route tree. The admin surface and the websocket are
// mounted only when admin credentials are configured.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/events", s.eventHandler.List)
	mux.HandleFunc("GET /api/events/week", s.eventHandler.Week)
	mux.HandleFunc("GET /api/events/{slug}", s.eventHandler.Get)
	mux.HandleFunc("GET /api/cities", s.venueHandler.ListCities)
	mux.HandleFunc("GET /api/venues", s.venueHandler.List)
	mux.HandleFunc("GET /api/venues/{slug}", s.venueHandler.Get)
	mux.HandleFunc("GET /api/search", s.searchHandler.Search)
	mux.HandleFunc("GET /calendar.ics", s.eventHandler.Feed)

	if s.cfg.Admin != nil {
		auth := middleware.AdminAuth(s.cfg.Admin.Username, s.cfg.Admin.PasswordHash)
		limit := middleware.RateLimit(s.limiter, middleware.RealIP, 10, time.Minute)

		admin := http.NewServeMux()
		admin.HandleFunc("GET /api/admin/series", s.adminHandler.ListSeries)
		admin.HandleFunc("POST /api/admin/series", s.adminHandler.CreateSeries)
		admin.HandleFunc("GET /api/admin/series/{id}", s.adminHandler.GetSeries)
		admin.HandleFunc("POST /api/admin/series/{id}/generate", s.adminHandler.GenerateSeries)
		admin.HandleFunc("POST /api/admin/generate", s.adminHandler.Generate)
		admin.HandleFunc("POST /api/admin/reindex", s.adminHandler.Reindex)
		admin.HandleFunc("POST /api/admin/import/venues", s.adminHandler.ImportVenues)
		admin.HandleFunc("POST /api/admin/import/events", s.adminHandler.ImportEvents)
		admin.HandleFunc("POST /api/admin/export", s.adminHandler.Export)

		mux.Handle("/api/admin/", auth(limit(admin)))
		mux.Handle("GET /ws", auth(ws.HandleWebSocket(s.Hub)))
	}

	return middleware.RequestLogger(s.logger)(mux)
}
