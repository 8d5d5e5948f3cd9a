package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names shared by the upstream API and the browser location.
const (
	ParamSortBy      = "sortBy"
	ParamSortOrder   = "sortOrder"
	ParamPage        = "page"
	ParamLimit       = "limit"
	ParamTitleFilter = "titleFilter"
	ParamMinPrice    = "minPrice"
	ParamMaxPrice    = "maxPrice"
	ParamMinRating   = "minRating"
	ParamMaxRating   = "maxRating"
	ParamTags        = "tags"
)

// Rating bounds accepted by the rating filters (inclusive).
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// SortField is the attribute a listing is ordered by.
type SortField string

const (
	SortByTitle        SortField = "title"
	SortByPrice        SortField = "price"
	SortByRating       SortField = "rating"
	SortByCreationDate SortField = "creationDate"
)

// SortFields lists every accepted sort field in display order.
var SortFields = []SortField{SortByTitle, SortByPrice, SortByRating, SortByCreationDate}

// ParseSortField returns the SortField named by s.
// The second result is false for unknown names.
func ParseSortField(s string) (SortField, bool) {
	for _, f := range SortFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// SortDirection is ascending or descending order.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// ParseSortDirection returns the SortDirection named by s ("ASC" or "DESC").
func ParseSortDirection(s string) (SortDirection, bool) {
	switch SortDirection(s) {
	case Ascending, Descending:
		return SortDirection(s), true
	}
	return "", false
}

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SortSpec is the ordering of a listing.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort orders by title, ascending.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByTitle, Direction: Ascending}
}

// FilterSpec narrows a listing. Nil bounds are absent and never serialized.
// Tags is an ordered set: insertion order is kept, duplicates never appear.
type FilterSpec struct {
	Title     string
	MinPrice  *int
	MaxPrice  *int
	MinRating *float64
	MaxRating *float64
	Tags      []string
}

// IsActive reports whether any filter field is set.
func (f FilterSpec) IsActive() bool {
	return f.Title != "" ||
		f.MinPrice != nil || f.MaxPrice != nil ||
		f.MinRating != nil || f.MaxRating != nil ||
		len(f.Tags) > 0
}

// Clone returns a deep copy so callers never share bound pointers or the tag slice.
func (f FilterSpec) Clone() FilterSpec {
	out := FilterSpec{Title: f.Title}
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	if f.MinRating != nil {
		v := *f.MinRating
		out.MinRating = &v
	}
	if f.MaxRating != nil {
		v := *f.MaxRating
		out.MaxRating = &v
	}
	if len(f.Tags) > 0 {
		out.Tags = append([]string(nil), f.Tags...)
	}
	return out
}

// HasTag reports whether tag is already in the set.
func (f FilterSpec) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagList joins the tag set with commas, the wire form of the tags parameter.
func (f FilterSpec) TagList() string {
	return strings.Join(f.Tags, ",")
}

// QueryParams is the canonical merge of sort, filter and pagination.
type QueryParams struct {
	Sort       SortSpec
	Filter     FilterSpec
	Pagination PaginationParams
}

// Values serializes q into query parameters. Required fields (sort, page,
// limit) are always present; absent or empty optional fields are omitted,
// never written as empty markers.
func (q QueryParams) Values() url.Values {
	v := url.Values{}
	v.Set(ParamSortBy, string(q.Sort.Field))
	v.Set(ParamSortOrder, string(q.Sort.Direction))
	v.Set(ParamPage, strconv.Itoa(q.Pagination.Page))
	v.Set(ParamLimit, strconv.Itoa(q.Pagination.Limit))
	for name, value := range q.Filter.Params() {
		v.Set(name, value)
	}
	return v
}

// Params returns the string form of every filter field that is set, keyed
// by parameter name. Unset fields have no entry.
func (f FilterSpec) Params() map[string]string {
	out := make(map[string]string, 6)
	if f.Title != "" {
		out[ParamTitleFilter] = f.Title
	}
	if f.MinPrice != nil {
		out[ParamMinPrice] = strconv.Itoa(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		out[ParamMaxPrice] = strconv.Itoa(*f.MaxPrice)
	}
	if f.MinRating != nil {
		out[ParamMinRating] = FormatFloat(*f.MinRating)
	}
	if f.MaxRating != nil {
		out[ParamMaxRating] = FormatFloat(*f.MaxRating)
	}
	if len(f.Tags) > 0 {
		out[ParamTags] = f.TagList()
	}
	return out
}

// FilterParamNames lists the optional filter parameters in a fixed order.
var FilterParamNames = []string{
	ParamTitleFilter, ParamMinPrice, ParamMaxPrice, ParamMinRating, ParamMaxRating, ParamTags,
}

// FormatFloat renders a rating bound in its shortest exact decimal form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
