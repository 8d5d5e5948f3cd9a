package handler

import (
	"bytes"
	"net/http"

	"github.com/pkordes/trip-browser/internal/service"
)

// GetExport handles GET /view/export.
// It returns the trips of the currently displayed page as a flat table.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = service.FormatJSON
	}
	if format != service.FormatJSON && format != service.FormatCSV {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "format must be json or csv")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "export failed")
		return
	}

	var buf bytes.Buffer
	if err := service.WriteTo(&buf, format, rows); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "export failed")
		return
	}
	if format == service.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
