package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"inspection_portal/internal/leads/repository"
	"inspection_portal/internal/leads/transport"
)

// exportLimit caps a single CSV export.
const exportLimit = 10000

var exportHeaders = []string{
	"id", "created_at", "status", "full_name", "email", "phone",
	"city", "neighborhood", "package", "property_age", "purpose",
	"land_area", "covered_area", "total_area",
	"price_before_vat", "vat_amount", "final_price",
	"assigned_to", "follow_up_date", "notes",
}

// Export writes the filtered lead list as CSV and returns the row count.
// Pagination fields of req are ignored.
func (s *Service) Export(ctx context.Context, req transport.ListLeadsRequest, w io.Writer) (int, error) {
	params, err := listParams(req)
	if err != nil {
		return 0, err
	}
	params.Limit = exportLimit

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return 0, err
	}
	if total > exportLimit {
		s.log.WithContext(ctx).Warn("lead export truncated", "total", total, "limit", exportLimit)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		if err := writer.Write(exportRow(lead)); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(leads), nil
}

func exportRow(l repository.Lead) []string {
	assignee := ""
	if l.AssignedToName != nil {
		assignee = *l.AssignedToName
	}
	followUp := ""
	if l.FollowUpDate != nil {
		followUp = l.FollowUpDate.Format(transport.DateLayout)
	}
	return []string{
		l.ID.String(),
		l.CreatedAt.UTC().Format(time.RFC3339),
		l.Status,
		csvSafe(l.FullName),
		csvSafe(l.Email),
		l.Phone,
		l.CityName,
		l.NeighborhoodName,
		l.PackageName,
		l.PropertyAgeKey,
		l.PurposeKey,
		l.LandArea.String(),
		l.CoveredArea.String(),
		l.TotalArea.String(),
		l.PriceBeforeVAT.StringFixed(2),
		l.VATAmount.StringFixed(2),
		l.FinalPrice.StringFixed(2),
		assignee,
		followUp,
		csvSafe(l.Notes),
	}
}

// csvSafe neutralizes spreadsheet formulas in free-text cells.
func csvSafe(v string) string {
	if v != "" && strings.ContainsRune("=+-@", rune(v[0])) {
		return "'" + v
	}
	return v
}
