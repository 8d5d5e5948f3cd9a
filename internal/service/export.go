package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkordes/trip-browser/internal/domain"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ViewSource exposes the current listing snapshot. *TripBrowser satisfies it.
type ViewSource interface {
	View() View
}

// ExportService renders the currently displayed page as a flat table.
type ExportService struct {
	views ViewSource
}

// NewExportService constructs an ExportService over views.
func NewExportService(views ViewSource) *ExportService {
	return &ExportService{views: views}
}

// Export returns one ExportRow per trip on the current page, in display order.
// An empty page yields an empty, non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return domain.NewExportRows(s.views.View().Items), nil
}

// WriteTo writes rows to w in the given format (FormatJSON or FormatCSV).
// Returns domain.ErrValidation for any other format.
func WriteTo(w io.Writer, format string, rows []domain.ExportRow) error {
	switch format {
	case FormatJSON, "":
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			return fmt.Errorf("service.WriteTo: %w", err)
		}
		return nil
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(domain.CSVHeader); err != nil {
			return fmt.Errorf("service.WriteTo: %w", err)
		}
		for _, r := range rows {
			if err := cw.Write(r.CSVRecord()); err != nil {
				return fmt.Errorf("service.WriteTo: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("service.WriteTo: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("service.WriteTo: %w: unknown export format %q", domain.ErrValidation, format)
	}
}
