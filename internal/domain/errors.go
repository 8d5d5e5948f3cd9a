package domain

import "errors"

// ErrNotFound is returned when the upstream API reports that the requested
// trip does not exist. It is always wrapped together with ErrFetchFailed.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails validation before reaching the
// browser (e.g. an unknown sort field or a malformed event body).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrFetchFailed wraps every transport, status or decoding failure of the
// upstream trips API. Previous results are kept when it occurs.
var ErrFetchFailed = errors.New("fetch failed")

// ErrNavigationRejected is returned by paging helpers when the requested page
// is outside [1, totalPages] or equal to the current page. No reload happens.
var ErrNavigationRejected = errors.New("navigation rejected")
