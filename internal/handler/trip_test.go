package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/handler"
)

func tripFixture(id string) domain.Trip {
	return domain.Trip{ID: id, Title: "Lisbon", Price: 300, Rating: 3, RatingCount: 50, CO2: 500}
}

// ---- GET /trips/{id} -------------------------------------------------------

func TestGetTrip_Found(t *testing.T) {
	var gotID string
	d := &mockDetails{load: func(_ context.Context, id string) (domain.Trip, error) {
		gotID = id
		return tripFixture(id), nil
	}}
	h := newHTTPHandler(deps{details: d})

	rec := serve(h, http.MethodGet, "/trips/abc-123", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", gotID)
	var body handler.TripBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Lisbon", body.Title)
	assert.InDelta(t, 3.0, body.Score, 1e-9)
	assert.Equal(t, domain.TierGood, body.Tier)
}

func TestGetTrip_NotFound(t *testing.T) {
	d := &mockDetails{load: func(context.Context, string) (domain.Trip, error) {
		return domain.Trip{}, fmt.Errorf("client: %w: %w", domain.ErrFetchFailed, domain.ErrNotFound)
	}}
	h := newHTTPHandler(deps{details: d})

	rec := serve(h, http.MethodGet, "/trips/missing", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestGetTrip_UpstreamFailure(t *testing.T) {
	d := &mockDetails{load: func(context.Context, string) (domain.Trip, error) {
		return domain.Trip{}, fmt.Errorf("client: %w", domain.ErrFetchFailed)
	}}
	h := newHTTPHandler(deps{details: d})

	rec := serve(h, http.MethodGet, "/trips/t1", nil)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "upstream_error", e.Code)
	assert.Equal(t, "failed to load trip details", e.Message)
}

// ---- GET /trip-of-the-day --------------------------------------------------

func TestGetTripOfTheDay(t *testing.T) {
	tests := []struct {
		name     string
		current  func(context.Context) (domain.Trip, bool, error)
		wantCode int
	}{
		{
			name: "picked",
			current: func(context.Context) (domain.Trip, bool, error) {
				return tripFixture("t9"), true, nil
			},
			wantCode: http.StatusOK,
		},
		{
			name: "empty sample",
			current: func(context.Context) (domain.Trip, bool, error) {
				return domain.Trip{}, false, nil
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "upstream failure",
			current: func(context.Context) (domain.Trip, bool, error) {
				return domain.Trip{}, false, domain.ErrFetchFailed
			},
			wantCode: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHTTPHandler(deps{picker: &mockPicker{current: tt.current}})

			rec := serve(h, http.MethodGet, "/trip-of-the-day", nil)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var body handler.TripBody
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "t9", body.ID)
			}
		})
	}
}
