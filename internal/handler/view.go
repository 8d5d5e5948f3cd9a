package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/query"
	"github.com/pkordes/trip-browser/internal/service"
)

// QueryBody is the JSON form of the current query. Unset filters are omitted.
type QueryBody struct {
	SortBy      string   `json:"sortBy"`
	SortOrder   string   `json:"sortOrder"`
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
	TitleFilter string   `json:"titleFilter,omitempty"`
	MinPrice    *int     `json:"minPrice,omitempty"`
	MaxPrice    *int     `json:"maxPrice,omitempty"`
	MinRating   *float64 `json:"minRating,omitempty"`
	MaxRating   *float64 `json:"maxRating,omitempty"`
	Tags        []string `json:"tags"`
}

// TripBody is a trip plus its derived score.
type TripBody struct {
	domain.Trip
	Score float64          `json:"score"`
	Tier  domain.ScoreTier `json:"tier"`
}

// ViewBody is the JSON form of service.View.
type ViewBody struct {
	Query         QueryBody         `json:"query"`
	Items         []TripBody        `json:"items"`
	Total         int               `json:"total"`
	TotalPages    int               `json:"totalPages"`
	HasNext       bool              `json:"hasNext"`
	HasPrevious   bool              `json:"hasPrevious"`
	FiltersActive bool              `json:"filtersActive"`
	Status        string            `json:"status"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
	Inputs        map[string]string `json:"inputs"`
	PendingTag    string            `json:"pendingTag"`
	GoToInput     string            `json:"goToInput"`
	Location      string            `json:"location,omitempty"`
}

// ResultBody describes the effect of one event.
type ResultBody struct {
	Changed    bool `json:"changed"`
	InputReset bool `json:"inputReset"`
}

// EventResponse is the body returned by POST /view/events.
type EventResponse struct {
	Result ResultBody `json:"result"`
	View   ViewBody   `json:"view"`
}

// GetView handles GET /view.
// The first request on an idle browser triggers the initial load.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	if s.browser.View().Status == service.StatusIdle {
		// A failed load is reported through the view's error field.
		_ = s.browser.Load(r.Context())
	}
	writeJSON(w, http.StatusOK, s.viewBody(s.browser.View()))
}

// PostEvent handles POST /view/events.
// Rejected navigation is a 409; a failed reload still answers 200 with the
// error in the view, matching what an interactive user sees.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, validationMessage(err))
		return
	}

	res, err := s.dispatch(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrNavigationRejected), errors.Is(err, domain.ErrValidation):
		writeDomainError(w, err, service.ListErrorMessage)
		return
	case err != nil:
		s.log.WarnContext(r.Context(), "event reload failed", "event", req.Type, "error", err)
	}

	writeJSON(w, http.StatusOK, EventResponse{
		Result: ResultBody{Changed: res.Changed, InputReset: res.ResetInput()},
		View:   s.viewBody(s.browser.View()),
	})
}

// PostReload handles POST /view/reload.
func (s *Server) PostReload(w http.ResponseWriter, r *http.Request) {
	_ = s.browser.Load(r.Context())
	writeJSON(w, http.StatusOK, s.viewBody(s.browser.View()))
}

// PostClearCache handles POST /view/cache/clear: the cache is emptied and
// the current page reloaded.
func (s *Server) PostClearCache(w http.ResponseWriter, r *http.Request) {
	_ = s.browser.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, s.viewBody(s.browser.View()))
}

func (s *Server) viewBody(v service.View) ViewBody {
	body := ViewBody{
		Query:         queryBody(v.Query),
		Items:         make([]TripBody, 0, len(v.Items)),
		Total:         v.Total(),
		TotalPages:    v.TotalPages(),
		HasNext:       v.Query.HasNext(),
		HasPrevious:   v.Query.HasPrevious(),
		FiltersActive: v.FiltersActive(),
		Status:        v.Status.String(),
		Loading:       v.Loading,
		Error:         v.Error,
		Inputs:        make(map[string]string, len(v.Inputs)),
		PendingTag:    v.PendingTag,
		GoToInput:     v.GoToInput,
	}
	for _, t := range v.Items {
		body.Items = append(body.Items, tripBody(t))
	}
	for f, raw := range v.Inputs {
		body.Inputs[string(f)] = raw
	}
	if s.location != nil {
		body.Location = s.location.String()
	}
	return body
}

func queryBody(q query.State) QueryBody {
	tags := q.Filter.Tags
	if tags == nil {
		tags = []string{}
	}
	return QueryBody{
		SortBy:      string(q.Sort.Field),
		SortOrder:   string(q.Sort.Direction),
		Page:        q.Page.Page,
		Limit:       q.Page.Limit,
		TitleFilter: q.Filter.Title,
		MinPrice:    q.Filter.MinPrice,
		MaxPrice:    q.Filter.MaxPrice,
		MinRating:   q.Filter.MinRating,
		MaxRating:   q.Filter.MaxRating,
		Tags:        tags,
	}
}

func tripBody(t domain.Trip) TripBody {
	return TripBody{Trip: t, Score: t.Score(), Tier: t.ScoreTier()}
}
