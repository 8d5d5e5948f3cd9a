package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-browser/internal/service"
)

// GetTrip handles GET /trips/{id}.
// Returns 404 when the upstream API has no such trip and 502 for any other
// upstream failure.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.details.Load(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, service.DetailErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, tripBody(t))
}

// GetTripOfTheDay handles GET /trip-of-the-day.
// Returns 404 when the sample the pick is drawn from is empty.
func (s *Server) GetTripOfTheDay(w http.ResponseWriter, r *http.Request) {
	t, ok, err := s.picks.Current(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to resolve trip of the day", "error", err)
		writeError(w, http.StatusBadGateway, codeUpstream, service.ListErrorMessage)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "no trips available")
		return
	}
	writeJSON(w, http.StatusOK, tripBody(t))
}
