package models

import "strings"

// Report column names as Service Fusion emits them. The customer column has
// shipped under several header variants, tried in priority order.
const (
	ColumnTech           = "Tech"
	ColumnJobNumber      = "Job#"
	ColumnCompletedOn    = "Completed On"
	ColumnJobCategory    = "Job Category"
	ColumnStatus         = "Status"
	ColumnServiceAddress = "Service Location Address 1"
	ColumnJobDetails     = "Job Details"
)

// CustomerColumnVariants lists accepted header spellings for the customer column.
var CustomerColumnVariants = []string{"Customer", "Customer)", "Customer )"}

// ReportTable is an ingested job report: a header row plus data rows, with
// column lookup by exact trimmed header name.
type ReportTable struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

// NewReportTable builds a table and its header index. The first occurrence of
// a duplicated header wins.
func NewReportTable(headers []string, rows [][]string) *ReportTable {
	index := make(map[string]int, len(headers))
	trimmed := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		trimmed[i] = h
		if _, exists := index[h]; !exists {
			index[h] = i
		}
	}
	return &ReportTable{Headers: trimmed, Rows: rows, index: index}
}

// Column returns the index of the named column.
func (t *ReportTable) Column(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// ColumnAny returns the first present column among the given names.
func (t *ReportTable) ColumnAny(names ...string) (int, string, bool) {
	for _, name := range names {
		if idx, ok := t.index[name]; ok {
			return idx, name, true
		}
	}
	return 0, "", false
}

// Cell reads a bounds-safe trimmed value from a row.
func (t *ReportTable) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Records materialises the table into job records. Absent columns yield empty
// fields; empty cells and absent cells are not distinguished.
func (t *ReportTable) Records() []JobRecord {
	techIdx, hasTech := t.Column(ColumnTech)
	jobIdx, hasJob := t.Column(ColumnJobNumber)
	dateIdx, hasDate := t.Column(ColumnCompletedOn)
	catIdx, hasCat := t.Column(ColumnJobCategory)
	statusIdx, hasStatus := t.Column(ColumnStatus)
	addrIdx, hasAddr := t.Column(ColumnServiceAddress)
	detailsIdx, hasDetails := t.Column(ColumnJobDetails)
	custIdx, _, hasCust := t.ColumnAny(CustomerColumnVariants...)

	records := make([]JobRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := JobRecord{}
		if hasTech {
			rec.Tech = t.Cell(row, techIdx)
		}
		if hasJob {
			rec.JobNumber = t.Cell(row, jobIdx)
		}
		if hasCat {
			rec.JobCategory = t.Cell(row, catIdx)
		}
		if hasDate {
			rec.CompletedRaw = t.Cell(row, dateIdx)
			rec.Completed = ParseCompletedOn(rec.CompletedRaw)
		}
		if hasStatus {
			rec.Status = t.Cell(row, statusIdx)
		}
		if hasAddr {
			rec.ServiceAddress = t.Cell(row, addrIdx)
		}
		if hasDetails {
			rec.JobDetails = t.Cell(row, detailsIdx)
		}
		if hasCust {
			rec.Customer = t.Cell(row, custIdx)
		}
		records = append(records, rec)
	}
	return records
}

// HasStatusColumn reports whether status filtering applies to this report.
func (t *ReportTable) HasStatusColumn() bool {
	_, ok := t.Column(ColumnStatus)
	return ok
}
