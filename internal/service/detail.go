package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkordes/trip-browser/internal/domain"
)

// DetailErrorMessage is the user-facing text shown when a trip fails to load.
const DetailErrorMessage = "failed to load trip details"

// DetailView is the state of a single-trip view. ID always names Trip;
// Requested is the id of the latest load, which differs from ID while that
// load is pending or after it failed.
type DetailView struct {
	ID        string
	Requested string
	Trip      *domain.Trip
	Loading   bool
	Error     string
}

// DetailLoader loads one trip by id through the response cache. A failed
// load keeps the previously shown trip and sets Error. Like TripBrowser, a
// response for an id that is no longer the latest request is dropped.
type DetailLoader struct {
	source TripSource
	log    *slog.Logger

	mu   sync.Mutex
	view DetailView
	gen  uint64
}

// NewDetailLoader constructs a DetailLoader over source.
func NewDetailLoader(source TripSource, log *slog.Logger) *DetailLoader {
	if log == nil {
		log = slog.Default()
	}
	return &DetailLoader{source: source, log: log}
}

// View returns the current detail state.
func (d *DetailLoader) View() DetailView {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.view
	if v.Trip != nil {
		t := *v.Trip
		v.Trip = &t
	}
	return v
}

// Load fetches the trip with the given id and returns it.
func (d *DetailLoader) Load(ctx context.Context, id string) (domain.Trip, error) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.view.Requested = id
	d.view.Loading = true
	d.view.Error = ""
	d.mu.Unlock()

	trip, err := d.source.GetDetail(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen == d.gen {
		d.view.Loading = false
		if err != nil {
			d.view.Error = DetailErrorMessage
		} else {
			d.view.ID = trip.ID
			d.view.Trip = &trip
		}
	}
	if err != nil {
		d.log.ErrorContext(ctx, "failed to load trip details", "trip_id", id, "error", err)
		return domain.Trip{}, fmt.Errorf("service.DetailLoader.Load: %w", err)
	}
	return trip, nil
}
