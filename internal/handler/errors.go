package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-browser/internal/domain"
)

// Error codes carried in ErrorResponse bodies.
const (
	codeNotFound           = "not_found"
	codeValidation         = "validation_error"
	codeNavigationRejected = "navigation_rejected"
	codeUpstream           = "upstream_error"
	codeInternal           = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeDomainError maps a sentinel error to its status and code.
// upstreamMessage is the user-facing text for fetch failures.
func writeDomainError(w http.ResponseWriter, err error, upstreamMessage string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "trip not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNavigationRejected):
		writeError(w, http.StatusConflict, codeNavigationRejected, unwrapMessage(err, domain.ErrNavigationRejected))
	default:
		writeError(w, http.StatusBadGateway, codeUpstream, upstreamMessage)
	}
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.TripBrowser.GoTo: navigation rejected: \"x\" is not a page number"
// → "\"x\" is not a page number"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
