package service

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
)

// IngestService parses an uploaded job report workbook into a ReportTable.
type IngestService struct {
	sheetName string
	logger    *zap.Logger
}

// NewIngestService constructs the service. sheetName is the worksheet the
// report exporter writes; empty falls back to "Worksheet".
func NewIngestService(sheetName string, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheetName == "" {
		sheetName = "Worksheet"
	}
	return &IngestService{sheetName: sheetName, logger: logger}
}

// Parse reads the report workbook. A missing expected sheet degrades to the
// first sheet with a warning; an unreadable or empty workbook is terminal.
func (s *IngestService) Parse(r io.Reader) (*models.ReportTable, []string, error) {
	warnings := []string{}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrBadReport.Code, appErrors.ErrBadReport.Status, appErrors.ErrBadReport.Message)
	}
	defer f.Close() //nolint:errcheck

	sheet := s.sheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		fallback := f.GetSheetName(0)
		if fallback == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrBadReport, "report workbook has no worksheets")
		}
		warnings = append(warnings, fmt.Sprintf("Sheet %q not found in the report. Using %q instead.", sheet, fallback))
		sheet = fallback
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrBadReport.Code, appErrors.ErrBadReport.Status, "failed to read report rows")
	}
	if len(rows) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrBadReport, "report worksheet is empty")
	}

	headers := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		body = append(body, row)
	}

	table := models.NewReportTable(headers, body)
	s.logger.Sugar().Infow("report ingested", "sheet", sheet, "columns", len(table.Headers), "rows", len(table.Rows))
	return table, warnings, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
