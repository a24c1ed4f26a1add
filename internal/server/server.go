// Package server exposes the wage calculation over HTTP.
package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"

	"github.com/bryan-cox/wageledger/internal/model"
	"github.com/bryan-cox/wageledger/internal/timesheet"
)

// Options configures the router.
type Options struct {
	Tariff             model.Tariff
	Location           *time.Location
	Logger             *slog.Logger
	MaxBodyBytes       int64
	RateLimitPerMinute int
	AllowedOrigins     []string
}

// Handler serves the wage endpoints with a fixed tariff.
type Handler struct {
	parser       *timesheet.Parser
	tariff       model.Tariff
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewHandler builds a Handler from opts.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		parser:       timesheet.NewParser(opts.Location),
		tariff:       opts.Tariff,
		logger:       logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// NewRouter mounts the API and its middleware.
func NewRouter(opts Options) *chi.Mux {
	h := NewHandler(opts)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{HeaderCalculationID},
		MaxAge:         300,
	}))

	r.Use(httplog.RequestLogger(h.logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tariff", h.GetTariff)

		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMinute > 0 {
				r.Use(httprate.Limit(opts.RateLimitPerMinute, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
				))
			}
			r.Post("/wages", h.CalculateWages)
			r.Post("/timesheets/validate", h.ValidateTimesheet)
		})
	})
	return r
}
