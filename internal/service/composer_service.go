package service

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
)

// Column positions of the pay sheet body, 1-based: A=Date, B=Property,
// C=Job#, D=Description, E=Qty, F=Per Unit. Column G carries the amount
// formulas and is never written.
const (
	colDate        = 1
	colProperty    = 2
	colJobNumber   = 3
	colDescription = 4
	colQuantity    = 5
)

const weekOfLabel = "Week Of"

// ComposerLayout pins the writable region of a template tab.
type ComposerLayout struct {
	HeaderRow         int
	DataStartRow      int
	DataEndRow        int
	WeekOfScanRows    int
	WeekOfScanCols    int
	DefaultWeekOfCell string
	DescriptionLimit  int
}

func (l ComposerLayout) withDefaults() ComposerLayout {
	if l.HeaderRow <= 0 {
		l.HeaderRow = 12
	}
	if l.DataStartRow <= 0 {
		l.DataStartRow = 13
	}
	if l.DataEndRow < l.DataStartRow {
		l.DataEndRow = 29
	}
	if l.WeekOfScanRows <= 0 {
		l.WeekOfScanRows = 9
	}
	if l.WeekOfScanCols <= 0 {
		l.WeekOfScanCols = 4
	}
	if l.DefaultWeekOfCell == "" {
		l.DefaultWeekOfCell = "B4"
	}
	if l.DescriptionLimit <= 0 {
		l.DescriptionLimit = 100
	}
	return l
}

// Capacity is the number of job rows a tab can hold before the summary row.
func (l ComposerLayout) Capacity() int {
	return l.DataEndRow - l.DataStartRow + 1
}

// ComposeResult is the outcome of populating a template.
type ComposeResult struct {
	Data        []byte
	Filename    string
	SkippedSubs []string
	JobCounts   map[string]int
	Warnings    []string
}

// ComposerService writes filtered jobs into per-subcontractor template tabs,
// preserving every formula and untargeted cell.
type ComposerService struct {
	layout ComposerLayout
	logger *zap.Logger
}

// NewComposerService constructs the service.
func NewComposerService(layout ComposerLayout, logger *zap.Logger) *ComposerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComposerService{layout: layout.withDefaults(), logger: logger}
}

// Compose populates a copy of the template with the filtered jobs. Tabs
// without jobs are left untouched; jobs without a matching tab are recorded as
// skipped rather than failing the run.
func (s *ComposerService) Compose(template io.Reader, jobs []models.FilteredJob, week models.WeekRange) (*ComposeResult, error) {
	if len(jobs) == 0 {
		return nil, appErrors.ErrNoJobs
	}

	f, err := excelize.OpenReader(template)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadTemplate.Code, appErrors.ErrBadTemplate.Status, appErrors.ErrBadTemplate.Message)
	}
	defer f.Close() //nolint:errcheck

	tabs := make(map[string]string)
	for _, name := range f.GetSheetList() {
		key := models.NormalizeName(name)
		if _, exists := tabs[key]; !exists {
			tabs[key] = name
		}
	}

	result := &ComposeResult{
		Filename:    week.ArtifactName(),
		SkippedSubs: []string{},
		JobCounts:   make(map[string]int),
		Warnings:    []string{},
	}

	for _, tech := range distinctTechs(jobs) {
		sheet, ok := tabs[models.NormalizeName(tech)]
		if !ok {
			s.logger.Sugar().Warnw("no matching tab for subcontractor", "tech", tech)
			result.SkippedSubs = append(result.SkippedSubs, tech)
			continue
		}

		if err := s.stampWeekOf(f, sheet, week); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stamp week range")
		}

		subJobs := jobsForTech(jobs, tech)
		sort.SliceStable(subJobs, func(i, j int) bool {
			return subJobs[i].Completed.Less(subJobs[j].Completed)
		})

		capacity := s.layout.Capacity()
		if len(subJobs) > capacity {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Only %d of %d jobs were included for %s; %d omitted due to template limits.",
				capacity, len(subJobs), tech, len(subJobs)-capacity))
			subJobs = subJobs[:capacity]
		}

		if err := s.writeJobs(f, sheet, subJobs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write job rows")
		}
		result.JobCounts[tech] = len(subJobs)
		s.logger.Sugar().Infow("tab populated", "tech", tech, "sheet", sheet, "jobs", len(subJobs))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize pay sheet")
	}
	result.Data = buf.Bytes()
	return result, nil
}

// stampWeekOf scans the bounded header region for the "Week Of" label and
// writes the formatted range into the cell to its right, falling back to the
// fixed default location when the label is absent.
func (s *ComposerService) stampWeekOf(f *excelize.File, sheet string, week models.WeekRange) error {
	for row := 1; row <= s.layout.WeekOfScanRows; row++ {
		for col := 1; col <= s.layout.WeekOfScanCols; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			value, err := f.GetCellValue(sheet, cell)
			if err != nil {
				return err
			}
			if value == "" || !strings.Contains(value, weekOfLabel) {
				continue
			}
			target, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			return f.SetCellValue(sheet, target, week.Label())
		}
	}
	return f.SetCellValue(sheet, s.layout.DefaultWeekOfCell, week.Label())
}

func (s *ComposerService) writeJobs(f *excelize.File, sheet string, subJobs []models.FilteredJob) error {
	for i, job := range subJobs {
		row := s.layout.DataStartRow + i

		if job.Completed.Valid {
			cell, err := excelize.CoordinatesToCellName(colDate, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, job.Completed.Time()); err != nil {
				return err
			}
		}

		if err := setCell(f, sheet, colProperty, row, propertyValue(job)); err != nil {
			return err
		}
		if err := s.writeJobNumber(f, sheet, row, job); err != nil {
			return err
		}
		if err := setCell(f, sheet, colDescription, row, descriptionValue(job, s.layout.DescriptionLimit)); err != nil {
			return err
		}
		if err := setCell(f, sheet, colQuantity, row, 1); err != nil {
			return err
		}
		// Per Unit stays blank for manual entry; Amount keeps its formula.
	}
	return nil
}

// writeJobNumber coerces numeric-looking job numbers to integers so the
// template's numeric formatting applies, keeping everything else verbatim.
func (s *ComposerService) writeJobNumber(f *excelize.File, sheet string, row int, job models.FilteredJob) error {
	raw := strings.TrimSpace(job.JobNumber)
	if raw == "" {
		return setCell(f, sheet, colJobNumber, row, "N/A")
	}
	if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
		return setCell(f, sheet, colJobNumber, row, int(parsed))
	}
	return setCell(f, sheet, colJobNumber, row, raw)
}

func propertyValue(job models.FilteredJob) string {
	if job.ServiceAddress != "" {
		return job.ServiceAddress
	}
	if job.JobCategory != "" {
		return job.JobCategory
	}
	return "N/A"
}

func descriptionValue(job models.FilteredJob, limit int) string {
	if job.JobDetails != "" {
		details := []rune(job.JobDetails)
		if len(details) > limit {
			return string(details[:limit]) + "..."
		}
		return job.JobDetails
	}
	if job.JobCategory != "" {
		return job.JobCategory
	}
	return "N/A"
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// distinctTechs preserves first-appearance order.
func distinctTechs(jobs []models.FilteredJob) []string {
	seen := make(map[string]struct{}, len(jobs))
	techs := make([]string, 0, len(jobs))
	for _, job := range jobs {
		key := models.NormalizeName(job.Tech)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		techs = append(techs, job.Tech)
	}
	return techs
}

func jobsForTech(jobs []models.FilteredJob, tech string) []models.FilteredJob {
	key := models.NormalizeName(tech)
	out := make([]models.FilteredJob, 0, len(jobs))
	for _, job := range jobs {
		if models.NormalizeName(job.Tech) == key {
			out = append(out, job)
		}
	}
	return out
}
