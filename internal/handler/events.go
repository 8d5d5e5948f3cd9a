package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/query"
)

// Event types accepted by POST /view/events.
const (
	EventSortChanged          = "sortChanged"
	EventSortDirectionToggled = "sortDirectionToggled"
	EventInput                = "input"
	EventTagAdded             = "tagAdded"
	EventTagRemoved           = "tagRemoved"
	EventTagTyped             = "tagTyped"
	EventTagCommitted         = "tagCommitted"
	EventTagDeleteKey         = "tagDeleteKey"
	EventCleared              = "cleared"
	EventPageChanged          = "pageChanged"
	EventNextPage             = "nextPage"
	EventPreviousPage         = "previousPage"
	EventGoTo                 = "goTo"
)

// EventRequest is the body of POST /view/events. Which fields are required
// depends on Type.
type EventRequest struct {
	Type  string `json:"type" validate:"required,oneof=sortChanged sortDirectionToggled input tagAdded tagRemoved tagTyped tagCommitted tagDeleteKey cleared pageChanged nextPage previousPage goTo"`
	Field string `json:"field,omitempty" validate:"required_if=Type sortChanged,required_if=Type input"`
	Value string `json:"value,omitempty" validate:"required_if=Type tagAdded,required_if=Type tagRemoved,required_if=Type tagTyped"`
	Page  int    `json:"page,omitempty"`
}

// dispatch routes req to the browser. Navigation helpers report a refused
// page change as domain.ErrNavigationRejected.
func (s *Server) dispatch(ctx context.Context, req EventRequest) (query.Result, error) {
	b := s.browser
	switch req.Type {
	case EventSortChanged:
		field, ok := domain.ParseSortField(req.Field)
		if !ok {
			return query.Result{}, fmt.Errorf("%w: unknown sort field %q", domain.ErrValidation, req.Field)
		}
		return b.Apply(ctx, query.SortChanged{Field: field})
	case EventSortDirectionToggled:
		return b.Apply(ctx, query.SortDirectionToggled{})
	case EventInput:
		field, ok := filter.ParseField(req.Field)
		if !ok {
			return query.Result{}, fmt.Errorf("%w: unknown filter %q", domain.ErrValidation, req.Field)
		}
		return b.Input(ctx, field, req.Value)
	case EventTagAdded:
		return b.Apply(ctx, query.TagAdded{Tag: req.Value})
	case EventTagRemoved:
		return b.Apply(ctx, query.TagRemoved{Tag: req.Value})
	case EventTagTyped:
		return b.TypeTags(ctx, req.Value)
	case EventTagCommitted:
		return b.CommitTag(ctx)
	case EventTagDeleteKey:
		return b.DeleteTagKey(ctx)
	case EventCleared:
		return b.ClearFilters(ctx)
	case EventPageChanged:
		res, err := b.Apply(ctx, query.PageChanged{Page: req.Page})
		if res.NavigationRejected {
			return res, fmt.Errorf("%w: page %d", domain.ErrNavigationRejected, req.Page)
		}
		return res, err
	case EventNextPage:
		return navigation(b.Next(ctx))
	case EventPreviousPage:
		return navigation(b.Previous(ctx))
	case EventGoTo:
		return navigation(b.GoTo(ctx, req.Value))
	}
	return query.Result{}, fmt.Errorf("%w: unknown event %q", domain.ErrValidation, req.Type)
}

// navigation converts a paging helper's outcome into a Result. An accepted
// page change always changes the query.
func navigation(err error) (query.Result, error) {
	if errors.Is(err, domain.ErrNavigationRejected) {
		return query.Result{NavigationRejected: true}, err
	}
	return query.Result{Changed: true}, err
}

// validationMessage turns validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(msgs, ", ")
}
