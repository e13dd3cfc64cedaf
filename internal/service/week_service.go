package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
)

// WeekService derives the Monday-Sunday pay window from report data. The
// result is advisory: callers may override it, and inference never fails.
type WeekService struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewWeekService constructs the service with the real clock.
func NewWeekService(logger *zap.Logger) *WeekService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeekService{logger: logger, now: time.Now}
}

// Infer walks the Completed On column and expands min/max to week boundaries.
// When the report spans more than two weeks, the range collapses to the most
// recent week: multi-week reports pay out only the latest week by default.
func (s *WeekService) Infer(table *models.ReportTable) models.WeekRange {
	idx, ok := table.Column(models.ColumnCompletedOn)
	if !ok {
		s.logger.Sugar().Warnw("report has no Completed On column, falling back to current week")
		return models.WeekOf(s.now())
	}

	var minDate, maxDate models.DateResult
	found := false
	for _, row := range table.Rows {
		parsed := models.ParseCompletedOn(table.Cell(row, idx))
		if !parsed.Valid {
			continue
		}
		if !found {
			minDate, maxDate = parsed, parsed
			found = true
			continue
		}
		if parsed.Less(minDate) {
			minDate = parsed
		}
		if maxDate.Less(parsed) {
			maxDate = parsed
		}
	}
	if !found {
		s.logger.Sugar().Warnw("no parseable Completed On dates, falling back to current week")
		return models.WeekOf(s.now())
	}

	start := models.WeekOf(minDate.Time()).Start
	end := models.WeekOf(maxDate.Time()).End

	if end.Sub(start) > 14*24*time.Hour {
		s.logger.Sugar().Infow("report spans multiple weeks, limiting to most recent",
			"raw_start", start.Format("2006-01-02"), "raw_end", end.Format("2006-01-02"))
		start = end.AddDate(0, 0, -6)
	}

	week := models.WeekRange{Start: start, End: end}
	s.logger.Sugar().Infow("inferred week range",
		"start", week.Start.Format("2006-01-02"), "end", week.End.Format("2006-01-02"))
	return week
}

// ParseOverride validates a manually supplied week range.
func (s *WeekService) ParseOverride(start, end string) (models.WeekRange, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return models.WeekRange{}, appErrors.Clone(appErrors.ErrValidation, "weekStart must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return models.WeekRange{}, appErrors.Clone(appErrors.ErrValidation, "weekEnd must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return models.WeekRange{}, appErrors.Clone(appErrors.ErrValidation, "weekEnd must not precede weekStart")
	}
	return models.WeekRange{Start: from.UTC(), End: to.UTC()}, nil
}
