// Package handler implements the HTTP view API of the trip browser.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, view.go, trip.go, etc.) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/query"
	"github.com/pkordes/trip-browser/internal/service"
	"github.com/pkordes/trip-browser/spec"
)

// BrowserServicer is the listing controller the view handlers drive.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without an upstream API.
type BrowserServicer interface {
	View() service.View
	Apply(ctx context.Context, e query.Event) (query.Result, error)
	Input(ctx context.Context, field filter.Field, raw string) (query.Result, error)
	TypeTags(ctx context.Context, text string) (query.Result, error)
	CommitTag(ctx context.Context) (query.Result, error)
	DeleteTagKey(ctx context.Context) (query.Result, error)
	ClearFilters(ctx context.Context) (query.Result, error)
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	GoTo(ctx context.Context, raw string) error
	Load(ctx context.Context) error
	ClearCache(ctx context.Context) error
}

// DetailServicer loads a single trip.
type DetailServicer interface {
	Load(ctx context.Context, id string) (domain.Trip, error)
}

// DailyPicker resolves the trip of the day.
type DailyPicker interface {
	Current(ctx context.Context) (domain.Trip, bool, error)
}

// Exporter renders the current page as flat rows.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server serves the view API. Wire it in main.go via Routes.
type Server struct {
	browser  BrowserServicer
	details  DetailServicer
	picks    DailyPicker
	export   Exporter
	location fmt.Stringer
	log      *slog.Logger
	validate *validator.Validate
}

// Option configures a Server.
type Option func(*Server)

// WithLocation reports the mirrored location string in every view body.
func WithLocation(loc fmt.Stringer) Option {
	return func(s *Server) { s.location = loc }
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(browser BrowserServicer, details DetailServicer, picks DailyPicker, export Exporter, opts ...Option) *Server {
	s := &Server{
		browser:  browser,
		details:  details,
		picks:    picks,
		export:   export,
		log:      slog.Default(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router for every endpoint. Cross-cutting middleware
// (request id, logging, CORS) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/view", func(r chi.Router) {
		r.Get("/", s.GetView)
		r.Post("/events", s.PostEvent)
		r.Post("/reload", s.PostReload)
		r.Post("/cache/clear", s.PostClearCache)
		r.Get("/export", s.GetExport)
	})

	r.Get("/trips/{id}", s.GetTrip)
	r.Get("/trip-of-the-day", s.GetTripOfTheDay)
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
