package models

// JobRecord is one row of the ingested report. Records are constructed once at
// report-load time and never mutated; filtering produces derived slices.
type JobRecord struct {
	Tech           string
	JobNumber      string
	Completed      DateResult
	CompletedRaw   string
	JobCategory    string
	Status         string
	ServiceAddress string
	JobDetails     string
	Customer       string
}

// FilteredJob is a job that passed roster and status filtering.
type FilteredJob struct {
	JobRecord
	MissingDate bool
}
