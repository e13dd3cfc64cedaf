package dto

import "time"

// WeekRange carries a resolved Monday-Sunday pay window.
type WeekRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// PreviewJob is one filtered job row shown before generation.
type PreviewJob struct {
	JobNumber   string `json:"jobNumber"`
	CompletedOn string `json:"completedOn,omitempty"`
	JobCategory string `json:"jobCategory,omitempty"`
	Status      string `json:"status,omitempty"`
	MissingDate bool   `json:"missingDate"`
}

// PreviewGroup clusters preview rows per subcontractor.
type PreviewGroup struct {
	Tech string       `json:"tech"`
	Jobs []PreviewJob `json:"jobs"`
}

// PreviewResponse is returned by POST /paysheets/preview.
type PreviewResponse struct {
	Week      WeekRange      `json:"week"`
	TotalJobs int            `json:"totalJobs"`
	Groups    []PreviewGroup `json:"groups"`
}

// RunResponse is returned after a successful pay sheet generation.
type RunResponse struct {
	RunID        string         `json:"runId"`
	Week         WeekRange      `json:"week"`
	ArtifactName string         `json:"artifactName"`
	DownloadURL  string         `json:"downloadUrl"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	SkippedSubs  []string       `json:"skippedSubs"`
	JobCounts    map[string]int `json:"jobCounts"`
}
