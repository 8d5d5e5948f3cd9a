package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/trip-browser/internal/domain"
)

func TestTrip_ScoreTier(t *testing.T) {
	cases := []struct {
		name string
		trip domain.Trip
		want domain.ScoreTier
	}{
		{"low rating", domain.Trip{Rating: 1.5}, domain.TierAverage},
		{"popular lifts tier", domain.Trip{Rating: 1.5, RatingCount: 100}, domain.TierGood},
		{"emissions drag score down", domain.Trip{Rating: 4.2, CO2: 500}, domain.TierGood},
		{"top rated", domain.Trip{Rating: 4.8, RatingCount: 20}, domain.TierAwesome},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.trip.ScoreTier())
		})
	}
}

func TestNewExportRows_NonNilTags(t *testing.T) {
	rows := domain.NewExportRows([]domain.Trip{{ID: "1", Title: "Lisbon", Rating: 4.5, RatingCount: 10}})

	assert.Len(t, rows, 1)
	assert.NotNil(t, rows[0].Tags)
	assert.InDelta(t, 4.6, rows[0].Score, 1e-9)
	assert.Equal(t, "4.60", rows[0].CSVRecord()[7])
}

func TestNewExportRows_Empty(t *testing.T) {
	rows := domain.NewExportRows(nil)

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
