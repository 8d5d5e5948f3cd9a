// Package domain contains the core data types for the trip browser.
// This package has zero external dependencies and is imported by every other
// internal package (filter, query, cache, client, service, handler).
package domain

// Trip is a single trip record as served by the remote trips API.
// The browser treats it as an opaque payload apart from the fields used for
// score display. JSON names follow the upstream wire format.
type Trip struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Rating       float64  `json:"rating"`
	RatingCount  int      `json:"nrOfRatings"`
	Category     string   `json:"verticalType"`
	Tags         []string `json:"tags"`
	CO2          float64  `json:"co2"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	ImageURL     string   `json:"imageUrl"`
	CreatedOn    string   `json:"creationDate"`
}

// ScoreTier buckets a trip's score for display.
type ScoreTier string

const (
	TierAverage ScoreTier = "average"
	TierGood    ScoreTier = "good"
	TierAwesome ScoreTier = "awesome"
)

// Score combines rating, popularity and emissions into one number:
// rating + ratingCount/100 - co2/1000.
func (t Trip) Score() float64 {
	return t.Rating + float64(t.RatingCount)/100 - t.CO2/1000
}

// ScoreTier returns the display bucket for the trip's score.
func (t Trip) ScoreTier() ScoreTier {
	s := t.Score()
	switch {
	case s < 2:
		return TierAverage
	case s < 4:
		return TierGood
	default:
		return TierAwesome
	}
}

// TripPage is one page of a trip listing (the ListResult of the browser).
type TripPage struct {
	Items []Trip `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
