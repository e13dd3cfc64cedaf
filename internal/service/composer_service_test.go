package service

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
)

// buildTemplate assembles an in-memory workbook shaped like the production
// template: one tab per subcontractor, a "Week Of:" label at labelCell, amount
// formulas in G13:G29 and a summary formula on row 30.
func buildTemplate(t *testing.T, labelCell string, tabs ...string) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, tab := range tabs {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", tab))
		} else {
			_, err := f.NewSheet(tab)
			require.NoError(t, err)
		}
		if labelCell != "" {
			require.NoError(t, f.SetCellValue(tab, labelCell, "Week Of:"))
		}
		for row := 13; row <= 29; row++ {
			require.NoError(t, f.SetCellFormula(tab, fmt.Sprintf("G%d", row), fmt.Sprintf("E%d*F%d", row, row)))
		}
		require.NoError(t, f.SetCellFormula(tab, "G30", "SUM(G13:G29)"))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func openResult(t *testing.T, result *ComposeResult) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func makeJob(tech, jobNum, date, details string) models.FilteredJob {
	parsed := models.ParseCompletedOn(date)
	return models.FilteredJob{
		JobRecord: models.JobRecord{
			Tech:           tech,
			JobNumber:      jobNum,
			Completed:      parsed,
			CompletedRaw:   date,
			ServiceAddress: "12 Main St",
			JobDetails:     details,
		},
		MissingDate: !parsed.Valid,
	}
}

func mustDate(ymd string) time.Time {
	d, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		panic(err)
	}
	return d
}

func testWeek() models.WeekRange {
	return models.WeekOf(mustDate("2025-06-04"))
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	value, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return value
}

func TestComposeWritesJobsAndPreservesFormulas(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1", "Sub 2")

	jobs := []models.FilteredJob{
		makeJob("Sub 1", "1002", "6/4/2025", "Second"),
		makeJob("Sub 1", "1001", "6/2/2025", "First"),
		makeJob("Sub 2", "1003", "6/5/2025", "Other sub"),
	}

	result, err := svc.Compose(template, jobs, testWeek())
	require.NoError(t, err)

	assert.Equal(t, "Sub_PaySheet_2025-06-02_to_2025-06-08.xlsx", result.Filename)
	assert.Equal(t, map[string]int{"Sub 1": 2, "Sub 2": 1}, result.JobCounts)
	assert.Empty(t, result.SkippedSubs)
	assert.Empty(t, result.Warnings)

	f := openResult(t, result)

	// Rows are ordered by completion date regardless of input order.
	assert.Equal(t, "1001", cellValue(t, f, "Sub 1", "C13"))
	assert.Equal(t, "1002", cellValue(t, f, "Sub 1", "C14"))
	assert.Equal(t, "First", cellValue(t, f, "Sub 1", "D13"))
	assert.Equal(t, "12 Main St", cellValue(t, f, "Sub 1", "B13"))
	assert.Equal(t, "1", cellValue(t, f, "Sub 1", "E13"))
	assert.Empty(t, cellValue(t, f, "Sub 1", "F13"))

	// Week label lands to the right of the scanned label.
	assert.Equal(t, "06/02/25 - 06/08/25", cellValue(t, f, "Sub 1", "B4"))

	// Amount formulas survive the write untouched.
	formula, err := f.GetCellFormula("Sub 1", "G13")
	require.NoError(t, err)
	assert.Equal(t, "E13*F13", formula)
	formula, err = f.GetCellFormula("Sub 1", "G30")
	require.NoError(t, err)
	assert.Equal(t, "SUM(G13:G29)", formula)

	assert.Equal(t, "1003", cellValue(t, f, "Sub 2", "C13"))
}

func TestComposeStampsWeekAtDefaultCellWhenLabelAbsent(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "", "Sub 1")

	result, err := svc.Compose(template, []models.FilteredJob{makeJob("Sub 1", "1001", "6/2/2025", "x")}, testWeek())
	require.NoError(t, err)

	f := openResult(t, result)
	assert.Equal(t, "06/02/25 - 06/08/25", cellValue(t, f, "Sub 1", "B4"))
}

func TestComposeFindsWeekLabelAnywhereInScanRegion(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "C2", "Sub 1")

	result, err := svc.Compose(template, []models.FilteredJob{makeJob("Sub 1", "1001", "6/2/2025", "x")}, testWeek())
	require.NoError(t, err)

	f := openResult(t, result)
	assert.Equal(t, "06/02/25 - 06/08/25", cellValue(t, f, "Sub 1", "D2"))
	assert.Empty(t, cellValue(t, f, "Sub 1", "B4"))
}

func TestComposeMatchesTabsCaseInsensitively(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "SUB 1")

	result, err := svc.Compose(template, []models.FilteredJob{makeJob("sub 1", "1001", "6/2/2025", "x")}, testWeek())
	require.NoError(t, err)

	assert.Empty(t, result.SkippedSubs)
	f := openResult(t, result)
	assert.Equal(t, "1001", cellValue(t, f, "SUB 1", "C13"))
}

func TestComposeSkipsSubsWithoutTabs(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	jobs := []models.FilteredJob{
		makeJob("Sub 1", "1001", "6/2/2025", "x"),
		makeJob("Sub 3", "1002", "6/3/2025", "no tab"),
	}
	result, err := svc.Compose(template, jobs, testWeek())
	require.NoError(t, err)

	assert.Equal(t, []string{"Sub 3"}, result.SkippedSubs)
	assert.Equal(t, map[string]int{"Sub 1": 1}, result.JobCounts)
}

func TestComposeClampsToTemplateCapacity(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	jobs := make([]models.FilteredJob, 0, 20)
	for i := 0; i < 20; i++ {
		jobs = append(jobs, makeJob("Sub 1", fmt.Sprintf("%d", 1001+i), fmt.Sprintf("6/%d/2025", (i%7)+2), "x"))
	}

	result, err := svc.Compose(template, jobs, testWeek())
	require.NoError(t, err)

	assert.Equal(t, 17, result.JobCounts["Sub 1"])
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Only 17 of 20 jobs were included for Sub 1; 3 omitted due to template limits.", result.Warnings[0])

	// The summary row stays clear of job data.
	f := openResult(t, result)
	assert.NotEmpty(t, cellValue(t, f, "Sub 1", "C29"))
	assert.Empty(t, cellValue(t, f, "Sub 1", "C30"))
}

func TestComposeJobNumberCoercion(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	jobs := []models.FilteredJob{
		makeJob("Sub 1", "1001.0", "6/2/2025", "numeric"),
		makeJob("Sub 1", "ABC-1", "6/3/2025", "alphanumeric"),
		makeJob("Sub 1", "", "6/4/2025", "blank"),
	}
	result, err := svc.Compose(template, jobs, testWeek())
	require.NoError(t, err)

	f := openResult(t, result)
	assert.Equal(t, "1001", cellValue(t, f, "Sub 1", "C13"))
	assert.Equal(t, "ABC-1", cellValue(t, f, "Sub 1", "C14"))
	assert.Equal(t, "N/A", cellValue(t, f, "Sub 1", "C15"))
}

func TestComposeTruncatesLongDescriptions(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	long := strings.Repeat("x", 150)
	result, err := svc.Compose(template, []models.FilteredJob{makeJob("Sub 1", "1001", "6/2/2025", long)}, testWeek())
	require.NoError(t, err)

	f := openResult(t, result)
	got := cellValue(t, f, "Sub 1", "D13")
	assert.Len(t, got, 103)
	assert.Equal(t, strings.Repeat("x", 100)+"...", got)
}

func TestComposeFallsBackForMissingPropertyAndDescription(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	bare := makeJob("Sub 1", "1001", "6/2/2025", "")
	bare.ServiceAddress = ""
	bare.JobCategory = "Repair"
	noCat := makeJob("Sub 1", "1002", "6/3/2025", "")
	noCat.ServiceAddress = ""

	result, err := svc.Compose(template, []models.FilteredJob{bare, noCat}, testWeek())
	require.NoError(t, err)

	f := openResult(t, result)
	assert.Equal(t, "Repair", cellValue(t, f, "Sub 1", "B13"))
	assert.Equal(t, "Repair", cellValue(t, f, "Sub 1", "D13"))
	assert.Equal(t, "N/A", cellValue(t, f, "Sub 1", "B14"))
	assert.Equal(t, "N/A", cellValue(t, f, "Sub 1", "D14"))
}

func TestComposeUnparseableDatesSortLastWithBlankDateCell(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	jobs := []models.FilteredJob{
		makeJob("Sub 1", "1001", "not a date", "undated"),
		makeJob("Sub 1", "1002", "6/2/2025", "dated"),
	}
	result, err := svc.Compose(template, jobs, testWeek())
	require.NoError(t, err)

	f := openResult(t, result)
	assert.Equal(t, "1002", cellValue(t, f, "Sub 1", "C13"))
	assert.Equal(t, "1001", cellValue(t, f, "Sub 1", "C14"))
	assert.Empty(t, cellValue(t, f, "Sub 1", "A14"))
}

func TestComposeRejectsEmptyJobSet(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())
	template := buildTemplate(t, "A4", "Sub 1")

	_, err := svc.Compose(template, nil, testWeek())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoJobs.Code, appErr.Code)
}

func TestComposeRejectsUnreadableTemplate(t *testing.T) {
	svc := NewComposerService(ComposerLayout{}, zap.NewNop())

	_, err := svc.Compose(bytes.NewReader([]byte("not a workbook")), []models.FilteredJob{makeJob("Sub 1", "1001", "6/2/2025", "x")}, testWeek())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBadTemplate.Code, appErr.Code)
}
