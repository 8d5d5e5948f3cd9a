package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/handler"
	"github.com/pkordes/trip-browser/internal/query"
	"github.com/pkordes/trip-browser/internal/service"
)

// mockBrowser is a test double for handler.BrowserServicer.
// Set only the method fields your test needs; unset ones are no-ops.
type mockBrowser struct {
	view       service.View
	apply      func(ctx context.Context, e query.Event) (query.Result, error)
	input      func(ctx context.Context, field filter.Field, raw string) (query.Result, error)
	next       func(ctx context.Context) error
	goTo       func(ctx context.Context, raw string) error
	load       func(ctx context.Context) error
	clearCache func(ctx context.Context) error

	calls []string
}

func (m *mockBrowser) View() service.View { return m.view }

func (m *mockBrowser) Apply(ctx context.Context, e query.Event) (query.Result, error) {
	m.calls = append(m.calls, "Apply")
	if m.apply == nil {
		return query.Result{Changed: true}, nil
	}
	return m.apply(ctx, e)
}

func (m *mockBrowser) Input(ctx context.Context, f filter.Field, raw string) (query.Result, error) {
	m.calls = append(m.calls, "Input")
	return m.input(ctx, f, raw)
}

func (m *mockBrowser) TypeTags(context.Context, string) (query.Result, error) {
	m.calls = append(m.calls, "TypeTags")
	return query.Result{}, nil
}

func (m *mockBrowser) CommitTag(context.Context) (query.Result, error) {
	m.calls = append(m.calls, "CommitTag")
	return query.Result{}, nil
}

func (m *mockBrowser) DeleteTagKey(context.Context) (query.Result, error) {
	m.calls = append(m.calls, "DeleteTagKey")
	return query.Result{}, nil
}

func (m *mockBrowser) ClearFilters(context.Context) (query.Result, error) {
	m.calls = append(m.calls, "ClearFilters")
	return query.Result{Changed: true}, nil
}

func (m *mockBrowser) Next(ctx context.Context) error {
	m.calls = append(m.calls, "Next")
	return m.next(ctx)
}

func (m *mockBrowser) Previous(context.Context) error {
	m.calls = append(m.calls, "Previous")
	return nil
}

func (m *mockBrowser) GoTo(ctx context.Context, raw string) error {
	m.calls = append(m.calls, "GoTo")
	return m.goTo(ctx, raw)
}

func (m *mockBrowser) Load(ctx context.Context) error {
	m.calls = append(m.calls, "Load")
	if m.load == nil {
		return nil
	}
	return m.load(ctx)
}

func (m *mockBrowser) ClearCache(ctx context.Context) error {
	m.calls = append(m.calls, "ClearCache")
	if m.clearCache == nil {
		return nil
	}
	return m.clearCache(ctx)
}

// compile-time check: mockBrowser must satisfy handler.BrowserServicer.
var _ handler.BrowserServicer = (*mockBrowser)(nil)

type mockDetails struct {
	load func(ctx context.Context, id string) (domain.Trip, error)
}

func (m *mockDetails) Load(ctx context.Context, id string) (domain.Trip, error) {
	return m.load(ctx, id)
}

var _ handler.DetailServicer = (*mockDetails)(nil)

type mockPicker struct {
	current func(ctx context.Context) (domain.Trip, bool, error)
}

func (m *mockPicker) Current(ctx context.Context) (domain.Trip, bool, error) {
	return m.current(ctx)
}

var _ handler.DailyPicker = (*mockPicker)(nil)

type mockExporter struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExporter) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.Exporter = (*mockExporter)(nil)

// ---- helpers ---------------------------------------------------------------

// deps bundles the doubles; nil fields get inert defaults.
type deps struct {
	browser  *mockBrowser
	details  *mockDetails
	picker   *mockPicker
	exporter *mockExporter
	opts     []handler.Option
}

func newHTTPHandler(d deps) http.Handler {
	if d.browser == nil {
		d.browser = &mockBrowser{view: readyView()}
	}
	if d.details == nil {
		d.details = &mockDetails{}
	}
	if d.picker == nil {
		d.picker = &mockPicker{}
	}
	if d.exporter == nil {
		d.exporter = &mockExporter{}
	}
	return handler.NewServer(d.browser, d.details, d.picker, d.exporter, d.opts...).Routes()
}

func readyView() service.View {
	q := query.New(domain.DefaultPageSize).WithTotal(30)
	return service.View{
		Query:  q,
		Items:  []domain.Trip{{ID: "t1", Title: "Rome", Rating: 4.5, RatingCount: 200}},
		Status: service.StatusReady,
		Inputs: map[filter.Field]string{},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func serveRaw(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	return serve(h, method, target, bytes.NewBufferString(body))
}
