package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/trip-browser/internal/middleware"
)

// eventSink decodes a view event the way the events endpoint does and
// answers 413 when the body limit cut the decode short.
var eventSink = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	var ev struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func titleEvent(n int) string {
	return `{"type":"titleChanged","value":"` + strings.Repeat("a", n) + `"}`
}

func TestMaxBodySizeHandler_ViewEvents(t *testing.T) {
	const limit = 256

	tests := []struct {
		name          string
		body          string
		contentLength int64 // 0 keeps what httptest derives from body; -1 means unknown
		want          int
	}{
		{name: "tag event under the limit", body: `{"type":"tagAdded","value":"beach"}`, want: http.StatusOK},
		{name: "title at the limit", body: titleEvent(limit - len(titleEvent(0))), want: http.StatusOK},
		{name: "oversized title with length", body: titleEvent(4 * limit), want: http.StatusRequestEntityTooLarge},
		{name: "oversized title streamed", body: titleEvent(4 * limit), contentLength: -1, want: http.StatusRequestEntityTooLarge},
		{name: "length lies low", body: titleEvent(4 * limit), contentLength: 10, want: http.StatusRequestEntityTooLarge},
	}

	h := middleware.NewMaxBodySizeHandler(limit)(eventSink)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/view/events", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.contentLength != 0 {
				req.ContentLength = tt.contentLength
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMaxBodySizeHandler_RejectsBeforeDecoding(t *testing.T) {
	reached := false
	h := middleware.NewMaxBodySizeHandler(middleware.DefaultMaxBodySize)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))
	req := httptest.NewRequest(http.MethodPost, "/view/events", strings.NewReader(titleEvent(middleware.DefaultMaxBodySize)))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, reached, "an advertised oversized event must not reach the handler")
}
