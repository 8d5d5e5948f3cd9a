package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/handler"
	"github.com/pkordes/trip-browser/internal/query"
	"github.com/pkordes/trip-browser/internal/service"
)

type stringer string

func (s stringer) String() string { return string(s) }

// ---- GET /view -------------------------------------------------------------

func TestGetView_ReadyDoesNotReload(t *testing.T) {
	b := &mockBrowser{view: readyView()}
	h := newHTTPHandler(deps{browser: b, opts: []handler.Option{handler.WithLocation(stringer("/?page=1"))}})

	rec := serve(h, http.MethodGet, "/view", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, b.calls)

	var body handler.ViewBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "title", body.Query.SortBy)
	assert.Equal(t, "ASC", body.Query.SortOrder)
	assert.Equal(t, []string{}, body.Query.Tags)
	assert.Equal(t, 30, body.Total)
	assert.Equal(t, 3, body.TotalPages)
	assert.True(t, body.HasNext)
	assert.False(t, body.HasPrevious)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "/?page=1", body.Location)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "t1", body.Items[0].ID)
	assert.InDelta(t, 6.5, body.Items[0].Score, 1e-9)
	assert.Equal(t, domain.TierAwesome, body.Items[0].Tier)
}

func TestGetView_IdleTriggersInitialLoad(t *testing.T) {
	b := &mockBrowser{view: service.View{Query: query.New(domain.DefaultPageSize)}}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodGet, "/view", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Load"}, b.calls)
}

func TestGetView_OmitsUnsetFilters(t *testing.T) {
	h := newHTTPHandler(deps{})

	rec := serve(h, http.MethodGet, "/view", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "minPrice")
	assert.NotContains(t, rec.Body.String(), "titleFilter")
}

// ---- POST /view/events -----------------------------------------------------

func TestPostEvent_SortChanged(t *testing.T) {
	var got query.Event
	b := &mockBrowser{
		view: readyView(),
		apply: func(_ context.Context, e query.Event) (query.Result, error) {
			got = e
			return query.Result{Changed: true}, nil
		},
	}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodPost, "/view/events",
		jsonBody(t, map[string]any{"type": "sortChanged", "field": "price"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, query.SortChanged{Field: domain.SortByPrice}, got)
	var body handler.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Result.Changed)
}

func TestPostEvent_RejectedInputReportsReset(t *testing.T) {
	b := &mockBrowser{
		view: readyView(),
		input: func(_ context.Context, f filter.Field, raw string) (query.Result, error) {
			assert.Equal(t, filter.FieldMinPrice, f)
			assert.Equal(t, "-5", raw)
			return query.Result{Field: f, Input: filter.Rejected}, nil
		},
	}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodPost, "/view/events",
		jsonBody(t, map[string]any{"type": "input", "field": "minPrice", "value": "-5"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Result.Changed)
	assert.True(t, body.Result.InputReset)
}

func TestPostEvent_PageChangedRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		page int
	}{
		{"past the end", `{"type":"pageChanged","page":9}`, 9},
		{"zero", `{"type":"pageChanged","page":0}`, 0},
		{"missing", `{"type":"pageChanged"}`, 0},
		{"negative", `{"type":"pageChanged","page":-2}`, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got query.Event
			b := &mockBrowser{
				view: readyView(),
				apply: func(_ context.Context, e query.Event) (query.Result, error) {
					got = e
					return query.Result{NavigationRejected: true}, nil
				},
			}
			h := newHTTPHandler(deps{browser: b})

			rec := serveRaw(h, http.MethodPost, "/view/events", tt.body)

			require.Equal(t, http.StatusConflict, rec.Code)
			assert.Equal(t, "navigation_rejected", decodeError(t, rec).Code)
			assert.Equal(t, query.PageChanged{Page: tt.page}, got)
		})
	}
}

func TestPostEvent_NextPageRejected(t *testing.T) {
	b := &mockBrowser{
		view: readyView(),
		next: func(context.Context) error {
			return fmt.Errorf("service.TripBrowser: %w: page 4", domain.ErrNavigationRejected)
		},
	}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodPost, "/view/events", jsonBody(t, map[string]any{"type": "nextPage"}))

	require.Equal(t, http.StatusConflict, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "navigation_rejected", e.Code)
	assert.Equal(t, "page 4", e.Message)
}

func TestPostEvent_FailedReloadStillReturnsView(t *testing.T) {
	v := readyView()
	v.Status = service.StatusFailed
	v.Error = service.ListErrorMessage
	b := &mockBrowser{
		view: v,
		goTo: func(context.Context, string) error {
			return fmt.Errorf("service.TripBrowser.Load: %w", domain.ErrFetchFailed)
		},
	}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodPost, "/view/events", jsonBody(t, map[string]any{"type": "goTo", "value": "2"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "failed", body.View.Status)
	assert.Equal(t, service.ListErrorMessage, body.View.Error)
	assert.Len(t, body.View.Items, 1, "previous items are still shown")
}

func TestPostEvent_TagEntryEvents(t *testing.T) {
	tests := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"type": "tagTyped", "value": "beach,"}, "TypeTags"},
		{map[string]any{"type": "tagCommitted"}, "CommitTag"},
		{map[string]any{"type": "tagDeleteKey"}, "DeleteTagKey"},
		{map[string]any{"type": "tagAdded", "value": "beach"}, "Apply"},
		{map[string]any{"type": "tagRemoved", "value": "beach"}, "Apply"},
		{map[string]any{"type": "cleared"}, "ClearFilters"},
		{map[string]any{"type": "previousPage"}, "Previous"},
		{map[string]any{"type": "sortDirectionToggled"}, "Apply"},
	}
	for _, tt := range tests {
		t.Run(tt.body["type"].(string), func(t *testing.T) {
			b := &mockBrowser{view: readyView()}
			h := newHTTPHandler(deps{browser: b})

			rec := serve(h, http.MethodPost, "/view/events", jsonBody(t, tt.body))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, []string{tt.want}, b.calls)
		})
	}
}

func TestPostEvent_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"type":`, http.StatusBadRequest},
		{"unknown field", `{"type":"cleared","colour":"red"}`, http.StatusBadRequest},
		{"missing type", `{}`, http.StatusUnprocessableEntity},
		{"unknown type", `{"type":"explode"}`, http.StatusUnprocessableEntity},
		{"sort without field", `{"type":"sortChanged"}`, http.StatusUnprocessableEntity},
		{"unknown sort field", `{"type":"sortChanged","field":"colour"}`, http.StatusUnprocessableEntity},
		{"unknown filter", `{"type":"input","field":"colour","value":"red"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBrowser{view: readyView()}
			h := newHTTPHandler(deps{browser: b})

			rec := serveRaw(h, http.MethodPost, "/view/events", tt.body)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec).Code)
			assert.Empty(t, b.calls)
		})
	}
}

// ---- reload and cache ------------------------------------------------------

func TestPostReload(t *testing.T) {
	b := &mockBrowser{view: readyView()}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodPost, "/view/reload", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Load"}, b.calls)
}

func TestPostClearCache(t *testing.T) {
	b := &mockBrowser{view: readyView()}
	h := newHTTPHandler(deps{browser: b})

	rec := serve(h, http.MethodPost, "/view/cache/clear", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ClearCache"}, b.calls)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
