package domain

import (
	"strconv"
	"strings"
)

// ExportRow is a single row in an export of the currently displayed page.
// It is a flat view of a Trip plus its derived score, one row per trip.
//
// Tags keeps the trip's tag order. Callers that need a joined string (e.g. CSV)
// should join with "|" so each trip stays on one CSV line.
type ExportRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	CO2         float64   `json:"co2"`
	Score       float64   `json:"score"`
	Tier        ScoreTier `json:"tier"`
	CreatedOn   string    `json:"created_on"`
	Tags        []string  `json:"tags"`
}

// NewExportRows flattens trips into export rows, preserving order.
// Always returns a non-nil slice so an empty page encodes as [].
func NewExportRows(trips []Trip) []ExportRow {
	rows := make([]ExportRow, 0, len(trips))
	for _, t := range trips {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, ExportRow{
			ID:          t.ID,
			Title:       t.Title,
			Category:    t.Category,
			Price:       t.Price,
			Rating:      t.Rating,
			RatingCount: t.RatingCount,
			CO2:         t.CO2,
			Score:       t.Score(),
			Tier:        t.ScoreTier(),
			CreatedOn:   t.CreatedOn,
			Tags:        tags,
		})
	}
	return rows
}

// CSVHeader names the columns written by CSVRecord.
var CSVHeader = []string{
	"id", "title", "category", "price", "rating", "rating_count",
	"co2", "score", "tier", "created_on", "tags",
}

// CSVRecord renders the row in CSVHeader column order.
// Tags are pipe-separated.
func (r ExportRow) CSVRecord() []string {
	return []string{
		r.ID,
		r.Title,
		r.Category,
		FormatFloat(r.Price),
		FormatFloat(r.Rating),
		strconv.Itoa(r.RatingCount),
		FormatFloat(r.CO2),
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		string(r.Tier),
		r.CreatedOn,
		strings.Join(r.Tags, "|"),
	}
}
