// Package service contains the orchestration logic of the trip browser.
// Services hold view state, decide between cache and upstream, and publish
// every committed change to their observers.
// No HTTP lives here; services depend on small interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/trip-browser/internal/cache"
	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/query"
)

// ListErrorMessage is the user-facing text shown when a listing fails to load.
const ListErrorMessage = "failed to load trips"

// TripSource is the read side of the trips API the services depend on.
// *cache.ResponseCache and *client.Client both satisfy it.
type TripSource interface {
	GetList(ctx context.Context, q domain.QueryParams) (domain.TripPage, error)
	GetDetail(ctx context.Context, id string) (domain.Trip, error)
}

// CacheInvalidator empties a response cache.
type CacheInvalidator interface {
	InvalidateAll()
}

// Status is the loader state: Idle -> Loading -> Ready | Failed. Every new
// load re-enters Loading regardless of the previous terminal state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// View is an immutable snapshot of the browser handed to observers.
type View struct {
	Query   query.State
	Items   []domain.Trip
	Status  Status
	Loading bool
	// Error is empty unless the latest load failed.
	Error string

	// Inputs holds the raw text of the filter inputs that are non-empty.
	Inputs map[filter.Field]string
	// PendingTag is the uncommitted tag entry text.
	PendingTag string
	// GoToInput is the raw "go to page" text.
	GoToInput string

	// Version increases with every published change. Observers may receive
	// views out of order when changes overlap; the higher version is newer.
	Version uint64
}

// Total is the result count of the last successful load.
func (v View) Total() int { return v.Query.Total }

// TotalPages is the page count derived from Total, at least 1.
func (v View) TotalPages() int { return v.Query.TotalPages() }

// FiltersActive reports whether any filter is set.
func (v View) FiltersActive() bool { return v.Query.Filter.IsActive() }

// Observer receives a snapshot after every committed change.
// Observers run synchronously on the goroutine that made the change and must
// not block.
type Observer func(View)

// TripBrowser is the listing controller. It is the only writer of items,
// totals, loading and error state, and routes every query mutation through
// query.State.Apply. It is safe for concurrent use.
//
// Each load takes a generation number; a response whose generation is no
// longer the latest is discarded, so a slow stale response cannot overwrite a
// newer one. In-flight fetches are never cancelled.
type TripBrowser struct {
	source TripSource
	cache  CacheInvalidator
	log    *slog.Logger

	mu        sync.Mutex
	state     query.State
	form      filter.Form
	goTo      string
	items     []domain.Trip
	status    Status
	errMsg    string
	gen       uint64
	version   uint64
	observers []observerEntry
	nextObsID int
}

type observerEntry struct {
	id int
	fn Observer
}

// BrowserOption configures a TripBrowser.
type BrowserOption func(*TripBrowser)

// WithInitialState starts the browser from s instead of the default state,
// e.g. a state hydrated from the location. The filter inputs are filled to match.
func WithInitialState(s query.State) BrowserOption {
	return func(b *TripBrowser) {
		b.state = s
		b.form.Fill(s.Filter)
	}
}

// WithCache lets ClearCache empty c before reloading.
func WithCache(c CacheInvalidator) BrowserOption {
	return func(b *TripBrowser) { b.cache = c }
}

// WithLogger sets the browser's logger.
func WithLogger(l *slog.Logger) BrowserOption {
	return func(b *TripBrowser) { b.log = l }
}

// NewTripBrowser constructs an idle browser over source. Nothing is fetched
// until Load or a mutating event.
func NewTripBrowser(source TripSource, opts ...BrowserOption) *TripBrowser {
	b := &TripBrowser{
		source: source,
		log:    slog.Default(),
		state:  query.New(domain.DefaultPageSize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn and returns a function that removes it.
func (b *TripBrowser) Subscribe(fn Observer) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextObsID++
	id := b.nextObsID
	b.observers = append(b.observers, observerEntry{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, o := range b.observers {
			if o.id == id {
				b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// View returns the current snapshot.
func (b *TripBrowser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Apply runs e through the query state. A changed state is published and
// reloaded; a rejected raw input blanks its field; a no-op (including a
// refused page change) does nothing at all. The returned error is the load
// error, if a load ran and failed.
func (b *TripBrowser) Apply(ctx context.Context, e query.Event) (query.Result, error) {
	b.mu.Lock()
	next, res := b.state.Apply(e)
	if res.ResetInput() {
		b.form.Blank(res.Field)
	}
	if !res.Changed {
		if !res.ResetInput() {
			b.mu.Unlock()
			return res, nil
		}
		snap, obs := b.publishLocked()
		b.mu.Unlock()
		notify(obs, snap)
		return res, nil
	}
	b.state = next
	t := b.beginLoadLocked()
	snap, obs := b.publishLocked()
	b.mu.Unlock()

	notify(obs, snap)
	return res, b.fetch(ctx, t)
}

// Input records raw text typed into a filter input and applies it.
func (b *TripBrowser) Input(ctx context.Context, field filter.Field, raw string) (query.Result, error) {
	e := query.InputEvent(string(field), raw)
	if e == nil {
		return query.Result{}, fmt.Errorf("service.TripBrowser.Input: %w: unknown filter %q", domain.ErrValidation, field)
	}
	b.mu.Lock()
	b.form.Set(field, raw)
	b.mu.Unlock()
	return b.Apply(ctx, e)
}

// TypeTags appends text to the tag entry buffer. Tokens completed by a comma
// are added to the tag set in a single event.
func (b *TripBrowser) TypeTags(ctx context.Context, text string) (query.Result, error) {
	b.mu.Lock()
	tokens := b.form.Tags.Type(text)
	b.mu.Unlock()
	if len(tokens) == 0 {
		return query.Result{}, nil
	}
	return b.Apply(ctx, query.TagAdded{Tag: strings.Join(tokens, ",")})
}

// CommitTag adds the pending tag entry text to the tag set (the commit key).
func (b *TripBrowser) CommitTag(ctx context.Context) (query.Result, error) {
	b.mu.Lock()
	tag := b.form.Tags.Commit()
	b.mu.Unlock()
	if tag == "" {
		return query.Result{}, nil
	}
	return b.Apply(ctx, query.TagAdded{Tag: tag})
}

// DeleteTagKey handles the delete key in the tag entry: it edits the pending
// text, or removes the last tag when the entry is empty.
func (b *TripBrowser) DeleteTagKey(ctx context.Context) (query.Result, error) {
	b.mu.Lock()
	removeLast := b.form.Tags.Delete()
	last := b.state.LastTag()
	b.mu.Unlock()
	if !removeLast || last == "" {
		return query.Result{}, nil
	}
	return b.Apply(ctx, query.TagRemoved{Tag: last})
}

// ClearFilters empties every filter input and the tag set in one event.
func (b *TripBrowser) ClearFilters(ctx context.Context) (query.Result, error) {
	b.mu.Lock()
	b.form.Reset()
	b.mu.Unlock()
	return b.Apply(ctx, query.Cleared{})
}

// Next moves to the following page.
// Returns domain.ErrNavigationRejected on the last page.
func (b *TripBrowser) Next(ctx context.Context) error {
	b.mu.Lock()
	page := b.state.Page.Page + 1
	b.mu.Unlock()
	return b.goToPage(ctx, page)
}

// Previous moves to the preceding page.
// Returns domain.ErrNavigationRejected on the first page.
func (b *TripBrowser) Previous(ctx context.Context) error {
	b.mu.Lock()
	page := b.state.Page.Page - 1
	b.mu.Unlock()
	return b.goToPage(ctx, page)
}

// SetGoToInput records the raw "go to page" text.
func (b *TripBrowser) SetGoToInput(raw string) {
	b.mu.Lock()
	b.goTo = raw
	b.mu.Unlock()
}

// GoTo navigates to the page typed as raw into the "go to page" input. The
// input keeps raw until the navigation is accepted, then it is cleared.
// Returns domain.ErrNavigationRejected for unparsable or out of range input.
func (b *TripBrowser) GoTo(ctx context.Context, raw string) error {
	b.SetGoToInput(raw)

	page, outcome := filter.ParseInteger(raw, true)
	if outcome != filter.Accepted {
		return fmt.Errorf("service.TripBrowser.GoTo: %w: %q is not a page number", domain.ErrNavigationRejected, raw)
	}
	err := b.goToPage(ctx, *page)
	if errors.Is(err, domain.ErrNavigationRejected) {
		return err
	}
	b.SetGoToInput("")
	return err
}

func (b *TripBrowser) goToPage(ctx context.Context, page int) error {
	res, err := b.Apply(ctx, query.PageChanged{Page: page})
	if res.NavigationRejected {
		return fmt.Errorf("service.TripBrowser: %w: page %d", domain.ErrNavigationRejected, page)
	}
	return err
}

// Load fetches the listing for the current query, through the cache.
// On failure the error message is set and the previous items and total are
// kept. A response superseded by a newer load is dropped and Load returns nil.
func (b *TripBrowser) Load(ctx context.Context) error {
	b.mu.Lock()
	t := b.beginLoadLocked()
	snap, obs := b.publishLocked()
	b.mu.Unlock()

	notify(obs, snap)
	return b.fetch(ctx, t)
}

// ClearCache empties the response cache and reloads.
func (b *TripBrowser) ClearCache(ctx context.Context) error {
	if b.cache != nil {
		b.cache.InvalidateAll()
		b.log.InfoContext(ctx, "response cache cleared")
	}
	return b.Load(ctx)
}

// loadTicket identifies one load.
type loadTicket struct {
	gen    uint64
	id     string
	params domain.QueryParams
}

// beginLoadLocked enters Loading and takes a new generation number.
func (b *TripBrowser) beginLoadLocked() loadTicket {
	b.gen++
	b.status = StatusLoading
	b.errMsg = ""
	return loadTicket{gen: b.gen, id: uuid.NewString(), params: b.state.Params()}
}

func (b *TripBrowser) fetch(ctx context.Context, t loadTicket) error {
	key := cache.CanonicalKey(t.params)
	b.log.DebugContext(ctx, "loading trips", "load_id", t.id, "generation", t.gen, "key", key)

	page, err := b.source.GetList(ctx, t.params)

	b.mu.Lock()
	if t.gen != b.gen {
		b.mu.Unlock()
		b.log.DebugContext(ctx, "discarding superseded trip list response",
			"load_id", t.id, "generation", t.gen, "key", key)
		return nil
	}
	if err != nil {
		b.status = StatusFailed
		b.errMsg = ListErrorMessage
	} else {
		b.items = page.Items
		b.state = b.state.WithTotal(page.Total)
		b.status = StatusReady
	}
	snap, obs := b.publishLocked()
	b.mu.Unlock()

	notify(obs, snap)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to load trips",
			"load_id", t.id, "generation", t.gen, "key", key, "error", err)
		return fmt.Errorf("service.TripBrowser.Load: %w", err)
	}
	return nil
}

func (b *TripBrowser) snapshotLocked() View {
	v := View{
		Query:      b.state,
		Items:      append([]domain.Trip(nil), b.items...),
		Status:     b.status,
		Loading:    b.status == StatusLoading,
		Error:      b.errMsg,
		Inputs:     make(map[filter.Field]string),
		PendingTag: b.form.Tags.String(),
		GoToInput:  b.goTo,
		Version:    b.version,
	}
	v.Query.Filter = b.state.Filter.Clone()
	for _, f := range filter.Fields {
		if raw := b.form.Get(f); raw != "" {
			v.Inputs[f] = raw
		}
	}
	return v
}

// publishLocked bumps the version and returns the snapshot to hand to the
// observers once the lock is released.
func (b *TripBrowser) publishLocked() (View, []Observer) {
	b.version++
	return b.snapshotLocked(), b.observersLocked()
}

func (b *TripBrowser) observersLocked() []Observer {
	out := make([]Observer, len(b.observers))
	for i, o := range b.observers {
		out[i] = o.fn
	}
	return out
}

func notify(obs []Observer, v View) {
	for _, fn := range obs {
		fn(v)
	}
}
