package query

import "github.com/pkordes/trip-browser/internal/domain"

// Event is a user intent that may change the query state.
// The set is closed: only the types in this file implement it.
type Event interface {
	isEvent()
}

// SortChanged selects a sort field. The direction is kept and the page resets.
type SortChanged struct{ Field domain.SortField }

// SortDirectionToggled flips ascending/descending. The page resets.
type SortDirectionToggled struct{}

// TitleChanged sets the title substring filter. An empty Raw clears it.
type TitleChanged struct{ Raw string }

// MinPriceChanged sets the lower price bound from raw input.
type MinPriceChanged struct{ Raw string }

// MaxPriceChanged sets the upper price bound from raw input.
type MaxPriceChanged struct{ Raw string }

// MinRatingChanged sets the lower rating bound from raw input.
type MinRatingChanged struct{ Raw string }

// MaxRatingChanged sets the upper rating bound from raw input.
type MaxRatingChanged struct{ Raw string }

// TagAdded appends one or more comma-separated tags to the tag set.
// Tags already present are ignored.
type TagAdded struct{ Tag string }

// TagRemoved removes a tag from the set.
type TagRemoved struct{ Tag string }

// Cleared resets every filter field and the tag set in one step.
// Sort is left untouched.
type Cleared struct{}

// PageChanged navigates to a page. It is refused unless
// 1 <= Page <= TotalPages and Page differs from the current page.
type PageChanged struct{ Page int }

func (SortChanged) isEvent()          {}
func (SortDirectionToggled) isEvent() {}
func (TitleChanged) isEvent()         {}
func (MinPriceChanged) isEvent()      {}
func (MaxPriceChanged) isEvent()      {}
func (MinRatingChanged) isEvent()     {}
func (MaxRatingChanged) isEvent()     {}
func (TagAdded) isEvent()             {}
func (TagRemoved) isEvent()           {}
func (Cleared) isEvent()              {}
func (PageChanged) isEvent()          {}

// InputEvent returns the raw-input event for field, or nil for an unknown field.
func InputEvent(field string, raw string) Event {
	switch field {
	case domain.ParamTitleFilter:
		return TitleChanged{Raw: raw}
	case domain.ParamMinPrice:
		return MinPriceChanged{Raw: raw}
	case domain.ParamMaxPrice:
		return MaxPriceChanged{Raw: raw}
	case domain.ParamMinRating:
		return MinRatingChanged{Raw: raw}
	case domain.ParamMaxRating:
		return MaxRatingChanged{Raw: raw}
	}
	return nil
}
