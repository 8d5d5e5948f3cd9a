package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/service"
)

// mockSource is a hand-written test double for service.TripSource.
// Each method is a function field; set only the ones your test needs.
// Calls are recorded so tests can assert on what was fetched.
type mockSource struct {
	getList   func(ctx context.Context, q domain.QueryParams) (domain.TripPage, error)
	getDetail func(ctx context.Context, id string) (domain.Trip, error)

	mu      sync.Mutex
	queries []domain.QueryParams
	ids     []string
}

func (m *mockSource) GetList(ctx context.Context, q domain.QueryParams) (domain.TripPage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	return m.getList(ctx, q)
}

func (m *mockSource) GetDetail(ctx context.Context, id string) (domain.Trip, error) {
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()
	return m.getDetail(ctx, id)
}

func (m *mockSource) listCalls() []domain.QueryParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.QueryParams(nil), m.queries...)
}

func (m *mockSource) lastQuery() domain.QueryParams {
	calls := m.listCalls()
	if len(calls) == 0 {
		return domain.QueryParams{}
	}
	return calls[len(calls)-1]
}

// compile-time check: mockSource must satisfy service.TripSource.
var _ service.TripSource = (*mockSource)(nil)

// mockStorage is an in-memory service.Storage with optional failure injection.
type mockStorage struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	setCall int
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: make(map[string]string)}
}

func (m *mockStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

var _ service.Storage = (*mockStorage)(nil)

// mockInvalidator counts InvalidateAll calls.
type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidateAll() { m.calls++ }

var _ service.CacheInvalidator = (*mockInvalidator)(nil)

// ---- fixtures --------------------------------------------------------------

var errUpstream = errors.New("upstream down")

func trip(id string) domain.Trip {
	return domain.Trip{ID: id, Title: "Trip " + id, Price: 100, Rating: 4}
}

func pageOf(total int, ids ...string) domain.TripPage {
	items := make([]domain.Trip, 0, len(ids))
	for _, id := range ids {
		items = append(items, trip(id))
	}
	return domain.TripPage{Items: items, Total: total, Page: 1, Limit: domain.DefaultPageSize}
}

// staticSource always returns page.
func staticSource(page domain.TripPage) *mockSource {
	return &mockSource{
		getList: func(context.Context, domain.QueryParams) (domain.TripPage, error) { return page, nil },
	}
}
