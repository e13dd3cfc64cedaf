package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
)

// totalsMarker identifies report-generated summary rows in the Tech column.
const totalsMarker = "totals represent tech's share"

// invoicedStatus is matched exactly, case-sensitively, when the report carries
// a Status column at all. A report without that column is not status-filtered.
const invoicedStatus = "Invoiced"

// FilterService reduces a raw report to the roster's invoiced jobs.
type FilterService struct {
	logger *zap.Logger
}

// NewFilterService constructs the service.
func NewFilterService(logger *zap.Logger) *FilterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterService{logger: logger}
}

// Filter applies the pipeline's filtering stages in order and reports
// data-quality issues as warnings, never as errors. An empty result is a
// valid, displayable outcome.
func (s *FilterService) Filter(table *models.ReportTable, roster models.Roster) ([]models.FilteredJob, []string) {
	warnings := s.columnDiagnostics(table)

	records := table.Records()
	total := len(records)

	// Report-generated totals rows are not real jobs.
	kept := records[:0:0]
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Tech), totalsMarker) {
			continue
		}
		kept = append(kept, rec)
	}
	s.logger.Sugar().Infow("totals rows removed", "before", total, "after", len(kept))

	// Roster membership, normalized on both sides. Unmatched technician names
	// are dropped silently; only the aggregate outcome is reported.
	rosterSet := make(map[string]struct{}, len(roster.Names))
	for _, name := range roster.Names {
		rosterSet[models.NormalizeName(name)] = struct{}{}
	}
	matched := kept[:0:0]
	for _, rec := range kept {
		if _, ok := rosterSet[models.NormalizeName(rec.Tech)]; ok {
			matched = append(matched, rec)
		}
	}
	s.logger.Sugar().Infow("roster filter applied", "team", roster.Team, "before", len(kept), "after", len(matched))

	if len(matched) == 0 {
		warnings = append(warnings, "No jobs match the selected subcontractors.")
		return nil, warnings
	}

	if table.HasStatusColumn() {
		invoiced := matched[:0:0]
		for _, rec := range matched {
			if rec.Status == invoicedStatus {
				invoiced = append(invoiced, rec)
			}
		}
		s.logger.Sugar().Infow("status filter applied", "before", len(matched), "after", len(invoiced))
		matched = invoiced
	}

	if len(matched) == 0 {
		warnings = append(warnings, "No jobs match the criteria (subcontractor and Invoiced status).")
		return nil, warnings
	}

	result := make([]models.FilteredJob, 0, len(matched))
	for _, rec := range matched {
		result = append(result, models.FilteredJob{
			JobRecord:   rec,
			MissingDate: !rec.Completed.Valid,
		})
	}
	return result, warnings
}

// columnDiagnostics warns about absent columns the pay sheet depends on.
func (s *FilterService) columnDiagnostics(table *models.ReportTable) []string {
	warnings := []string{}

	_, _, hasCustomer := table.ColumnAny(models.CustomerColumnVariants...)
	if !hasCustomer {
		warnings = append(warnings, "Customer column not found in the report. Property field will use Service Location Address as fallback.")
	}

	important := []string{
		models.ColumnTech,
		models.ColumnJobNumber,
		models.ColumnJobCategory,
		models.ColumnServiceAddress,
		models.ColumnJobDetails,
	}
	missing := []string{}
	for _, col := range important {
		if _, ok := table.Column(col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		warnings = append(warnings, fmt.Sprintf("Missing columns needed for pay sheet: %s. Output may be incomplete.", strings.Join(missing, ", ")))
	}

	return warnings
}
