// Package query owns the live sort, filter and pagination state of a trip
// listing. State is a value; State.Apply is the single, pure transition
// from one state to the next.
package query

import (
	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
)

// State is the view's query state plus the last known result count, which
// bounds page navigation. Only Apply changes Sort, Filter and Page; Total is
// written by the loader through WithTotal.
type State struct {
	Sort   domain.SortSpec
	Filter domain.FilterSpec
	Page   domain.PaginationParams
	Total  int
}

// New returns the default state: title ascending, no filters, page 1.
// pageSize falls back to domain.DefaultPageSize when not positive.
func New(pageSize int) State {
	var limit *int
	if pageSize > 0 {
		limit = &pageSize
	}
	return State{
		Sort: domain.DefaultSort(),
		Page: domain.NewPaginationParams(nil, limit),
	}
}

// Params returns the canonical query for this state. The filter is copied,
// so the result can be kept without aliasing the state.
func (s State) Params() domain.QueryParams {
	return domain.QueryParams{
		Sort:       s.Sort,
		Filter:     s.Filter.Clone(),
		Pagination: s.Page,
	}
}

// TotalPages is ceil(Total / page size), at least 1.
func (s State) TotalPages() int { return s.Page.TotalPages(s.Total) }

// HasNext reports whether "next page" is enabled.
func (s State) HasNext() bool { return s.Page.HasNext(s.Total) }

// HasPrevious reports whether "previous page" is enabled.
func (s State) HasPrevious() bool { return s.Page.HasPrevious() }

// WithTotal returns s with the result count replaced.
func (s State) WithTotal(total int) State {
	if total < 0 {
		total = 0
	}
	s.Total = total
	return s
}

// LastTag returns the most recently added tag, or "" when there are none.
func (s State) LastTag() string {
	if n := len(s.Filter.Tags); n > 0 {
		return s.Filter.Tags[n-1]
	}
	return ""
}

// Result describes the effect of one Apply call.
type Result struct {
	// Changed is true when the canonical query differs after the event.
	// Only changed results trigger a reload.
	Changed bool

	// Field and Input are set for raw filter input events. Input is
	// filter.Rejected when the raw text must be blanked.
	Field filter.Field
	Input filter.Outcome

	// NavigationRejected is true when a PageChanged event was refused.
	NavigationRejected bool
}

// ResetInput reports whether the raw input for Field must be blanked.
func (r Result) ResetInput() bool { return r.Field != "" && r.Input.ResetInput() }

// Apply returns the state after e together with a description of the effect.
// s itself is never modified.
func (s State) Apply(e Event) (State, Result) {
	next := s
	next.Filter = s.Filter.Clone()

	var res Result
	switch ev := e.(type) {
	case SortChanged:
		if _, ok := domain.ParseSortField(string(ev.Field)); !ok {
			return s, res
		}
		next.Sort.Field = ev.Field
		next.Page.Page = 1
	case SortDirectionToggled:
		next.Sort.Direction = next.Sort.Direction.Toggle()
		next.Page.Page = 1
	case TitleChanged:
		res.Field, res.Input = filter.FieldTitle, filter.Accepted
		if ev.Raw == "" {
			res.Input = filter.Cleared
		}
		next.Filter.Title = ev.Raw
		next.Page.Page = 1
	case MinPriceChanged:
		res.Field = filter.FieldMinPrice
		next.Filter.MinPrice, res.Input = filter.ParsePrice(ev.Raw)
		next.Page.Page = 1
	case MaxPriceChanged:
		res.Field = filter.FieldMaxPrice
		next.Filter.MaxPrice, res.Input = filter.ParsePrice(ev.Raw)
		next.Page.Page = 1
	case MinRatingChanged:
		res.Field = filter.FieldMinRating
		next.Filter.MinRating, res.Input = filter.ParseRating(ev.Raw)
		next.Page.Page = 1
	case MaxRatingChanged:
		res.Field = filter.FieldMaxRating
		next.Filter.MaxRating, res.Input = filter.ParseRating(ev.Raw)
		next.Page.Page = 1
	case TagAdded:
		for _, tag := range filter.SplitTags(ev.Tag) {
			if !next.Filter.HasTag(tag) {
				next.Filter.Tags = append(next.Filter.Tags, tag)
			}
		}
		next.Page.Page = 1
	case TagRemoved:
		kept := next.Filter.Tags[:0]
		for _, t := range next.Filter.Tags {
			if t != ev.Tag {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		next.Filter.Tags = kept
		next.Page.Page = 1
	case Cleared:
		next.Filter = domain.FilterSpec{}
		next.Page.Page = 1
	case PageChanged:
		if !s.Page.CanGoTo(ev.Page, s.Total) {
			res.NavigationRejected = true
			return s, res
		}
		next.Page.Page = ev.Page
	default:
		return s, res
	}

	res.Changed = canonical(s) != canonical(next)
	if !res.Changed {
		// Keep the caller's exact value, tags slice included.
		return s, res
	}
	return next, res
}

// canonical is the encoded query, used to compare states field by field.
func canonical(s State) string {
	return s.Params().Values().Encode()
}
