// Package app wires the trip browser together: configuration, the upstream
// client, the response cache, the services and the storage backend. Both
// binaries build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/trip-browser/internal/cache"
	"github.com/pkordes/trip-browser/internal/client"
	"github.com/pkordes/trip-browser/internal/config"
	"github.com/pkordes/trip-browser/internal/handler"
	"github.com/pkordes/trip-browser/internal/location"
	"github.com/pkordes/trip-browser/internal/middleware"
	"github.com/pkordes/trip-browser/internal/repo"
	"github.com/pkordes/trip-browser/internal/service"
)

// App is one browsing session and everything it depends on.
type App struct {
	Config   config.Config
	Log      *slog.Logger
	Client   *client.Client
	Cache    *cache.ResponseCache
	Location *location.Memory
	Sync     *service.URLSync
	Browser  *service.TripBrowser
	Details  *service.DetailLoader
	Picks    *service.DailyPick
	Export   *service.ExportService
	Storage  repo.KV

	closeStorage func() error
	unsubscribe  func()
}

// Option configures New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	storage    repo.KV
}

// WithHTTPClient replaces the http.Client used for the trips API.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithStorage uses kv instead of opening cfg.StorageBackend.
func WithStorage(kv repo.KV) Option {
	return func(o *options) { o.storage = kv }
}

// New builds a session. startURL is the initial location ("/?page=2&tags=beach");
// it is read once to hydrate the query state. Nothing is fetched yet.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, startURL string, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	c, err := client.New(cfg.TripsAPIBase,
		client.WithHTTPClient(o.httpClient),
		client.WithRateLimit(cfg.UpstreamRPS, 1),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	loc, err := location.NewMemory(startURL)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	kv, closeStorage := o.storage, func() error { return nil }
	if kv == nil {
		kv, closeStorage, err = OpenStorage(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("app.New: %w", err)
		}
	}

	rc := cache.New(c, log)
	us := service.NewURLSync(loc, cfg.PageSize, log)
	browser := service.NewTripBrowser(rc,
		service.WithInitialState(us.Initial()),
		service.WithCache(rc),
		service.WithLogger(log),
	)

	a := &App{
		Config:       cfg,
		Log:          log,
		Client:       c,
		Cache:        rc,
		Location:     loc,
		Sync:         us,
		Browser:      browser,
		Details:      service.NewDetailLoader(rc, log),
		Picks:        service.NewDailyPick(rc, kv, service.WithSampleSize(cfg.DailyPickSample), service.WithPickLogger(log)),
		Export:       service.NewExportService(browser),
		Storage:      kv,
		closeStorage: closeStorage,
		unsubscribe:  us.Attach(browser),
	}
	return a, nil
}

// Handler returns the view API with the standard middleware stack.
func (a *App) Handler() http.Handler {
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(a.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(a.Config.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(middleware.DefaultMaxBodySize))

	srv := handler.NewServer(a.Browser, a.Details, a.Picks, a.Export,
		handler.WithLocation(a.Location),
		handler.WithLogger(a.Log),
	)
	r.Mount("/", srv.Routes())
	return r
}

// Close detaches the location sync and releases the storage backend.
func (a *App) Close() error {
	a.unsubscribe()
	if err := a.closeStorage(); err != nil {
		return fmt.Errorf("app.App.Close: %w", err)
	}
	return nil
}
