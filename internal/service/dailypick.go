package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkordes/trip-browser/internal/domain"
)

// DailyPickKey is the storage key of the persisted daily pick.
const DailyPickKey = "tripOfTheDay"

// DayLayout formats the calendar day stamp of a daily pick.
const DayLayout = "2006-01-02"

// DefaultSampleSize is how many trips a refresh draws the pick from.
const DefaultSampleSize = 50

// Storage is the durable key-value collaborator. Get reports false for a
// missing key. Implementations live in internal/repo.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// storedPick is the persisted form: {"date": "...", "trip": {...}}.
type storedPick struct {
	Date string      `json:"date"`
	Trip domain.Trip `json:"trip"`
}

// DailyPick selects one random trip per calendar day and persists it so
// restarts within the same day return the same trip without a fetch.
type DailyPick struct {
	source TripSource
	store  Storage
	log    *slog.Logger
	now    func() time.Time
	intN   func(n int) int
	sample int

	mu      sync.Mutex
	day     string
	current *domain.Trip
}

// DailyPickOption configures a DailyPick.
type DailyPickOption func(*DailyPick)

// WithClock replaces time.Now, which decides the calendar day.
func WithClock(now func() time.Time) DailyPickOption {
	return func(d *DailyPick) { d.now = now }
}

// WithRandom replaces the uniform index source; intN(n) must return a value in [0, n).
func WithRandom(intN func(n int) int) DailyPickOption {
	return func(d *DailyPick) { d.intN = intN }
}

// WithSampleSize sets how many trips a refresh fetches, capped at domain.MaxPageSize.
func WithSampleSize(n int) DailyPickOption {
	return func(d *DailyPick) {
		if n > 0 {
			d.sample = min(n, domain.MaxPageSize)
		}
	}
}

// WithPickLogger sets the logger.
func WithPickLogger(l *slog.Logger) DailyPickOption {
	return func(d *DailyPick) { d.log = l }
}

// NewDailyPick constructs a DailyPick that samples source and persists to store.
func NewDailyPick(source TripSource, store Storage, opts ...DailyPickOption) *DailyPick {
	d := &DailyPick{
		source: source,
		store:  store,
		log:    slog.Default(),
		now:    time.Now,
		intN:   rand.IntN,
		sample: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Today returns the current calendar day stamp in local time.
func (d *DailyPick) Today() string {
	return d.now().Local().Format(DayLayout)
}

// Get returns today's pick. A stored pick from today is returned without any
// fetch; a missing, stale or unreadable one triggers Refresh.
// The second result is false when the sample came back empty.
func (d *DailyPick) Get(ctx context.Context) (domain.Trip, bool, error) {
	today := d.Today()

	raw, ok, err := d.store.Get(ctx, DailyPickKey)
	switch {
	case err != nil:
		d.log.WarnContext(ctx, "reading daily pick failed", "error", err)
	case ok:
		var sp storedPick
		if jerr := json.Unmarshal([]byte(raw), &sp); jerr != nil {
			d.log.WarnContext(ctx, "ignoring corrupt daily pick", "error", jerr)
		} else if sp.Trip.ID == "" {
			d.log.WarnContext(ctx, "ignoring daily pick without a trip", "date", sp.Date)
		} else if sp.Date == today {
			d.remember(today, sp.Trip)
			return sp.Trip, true, nil
		}
	}
	return d.Refresh(ctx)
}

// Refresh draws a new pick from a fresh sample and persists it under today's
// stamp. A persistence failure is logged and the pick is still returned.
func (d *DailyPick) Refresh(ctx context.Context) (domain.Trip, bool, error) {
	today := d.Today()
	limit := d.sample
	q := domain.QueryParams{
		Sort:       domain.DefaultSort(),
		Pagination: domain.NewPaginationParams(nil, &limit),
	}

	page, err := d.source.GetList(ctx, q)
	if err != nil {
		return domain.Trip{}, false, fmt.Errorf("service.DailyPick.Refresh: %w", err)
	}
	if len(page.Items) == 0 {
		return domain.Trip{}, false, nil
	}

	trip := page.Items[d.intN(len(page.Items))]
	d.remember(today, trip)
	d.log.InfoContext(ctx, "daily pick refreshed", "date", today, "trip_id", trip.ID, "sample", len(page.Items))

	b, err := json.Marshal(storedPick{Date: today, Trip: trip})
	if err == nil {
		err = d.store.Set(ctx, DailyPickKey, string(b))
	}
	if err != nil {
		d.log.ErrorContext(ctx, "persisting daily pick failed", "error", err)
	}
	return trip, true, nil
}

// Current returns the pick already resolved by this process today, falling
// back to Get.
func (d *DailyPick) Current(ctx context.Context) (domain.Trip, bool, error) {
	today := d.Today()
	d.mu.Lock()
	if d.current != nil && d.day == today {
		t := *d.current
		d.mu.Unlock()
		return t, true, nil
	}
	d.mu.Unlock()
	return d.Get(ctx)
}

func (d *DailyPick) remember(day string, t domain.Trip) {
	d.mu.Lock()
	d.day = day
	d.current = &t
	d.mu.Unlock()
}
