package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/dto"
	"github.com/mfreeman481/paysheet-api/internal/models"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
	"github.com/mfreeman481/paysheet-api/pkg/export"
	"github.com/mfreeman481/paysheet-api/pkg/storage"
)

type rosterLoader interface {
	Load(team models.Team) []string
}

type artifactStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// RunOptions carry the caller's team selection and optional week override.
type RunOptions struct {
	Team models.Team
	Week *models.WeekRange
}

// ExportFile is a rendered preview export ready for download.
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Download points at a stored artifact resolved from a signed token.
type Download struct {
	Path     string
	Filename string
}

// PaysheetServiceConfig tunes download URL construction.
type PaysheetServiceConfig struct {
	APIPrefix string
}

// PaysheetService orchestrates one pay run: ingest, week inference, roster
// filtering, composition, and artifact storage. Each run is synchronous and
// stores its artifact under a run-unique directory so concurrent runs cannot
// collide on the deterministic file name.
type PaysheetService struct {
	rosters  rosterLoader
	ingest   *IngestService
	weeks    *WeekService
	filter   *FilterService
	composer *ComposerService
	storage  artifactStorage
	signer   *storage.SignedURLSigner
	metrics  *MetricsService
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	cfg      PaysheetServiceConfig
}

// NewPaysheetService constructs the orchestration service.
func NewPaysheetService(
	rosters rosterLoader,
	ingest *IngestService,
	weeks *WeekService,
	filter *FilterService,
	composer *ComposerService,
	store artifactStorage,
	signer *storage.SignedURLSigner,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg PaysheetServiceConfig,
) *PaysheetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &PaysheetService{
		rosters:  rosters,
		ingest:   ingest,
		weeks:    weeks,
		filter:   filter,
		composer: composer,
		storage:  store,
		signer:   signer,
		metrics:  metrics,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Preview runs the pipeline up to filtering and returns the grouped result.
// An empty preview is a valid outcome, reported through warnings.
func (s *PaysheetService) Preview(report io.Reader, opts RunOptions) (*dto.PreviewResponse, []string, error) {
	jobs, week, warnings, err := s.prepare(report, opts)
	if err != nil {
		return nil, nil, err
	}
	return buildPreview(jobs, week), warnings, nil
}

// ExportPreview renders the filtered preview as CSV or PDF.
func (s *PaysheetService) ExportPreview(report io.Reader, opts RunOptions, format string) (*ExportFile, []string, error) {
	jobs, week, warnings, err := s.prepare(report, opts)
	if err != nil {
		return nil, nil, err
	}

	dataset := previewDataset(jobs)
	base := fmt.Sprintf("Job_Preview_%s_to_%s", week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"))

	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Data: payload, Filename: base + ".csv", ContentType: "text/csv"}, warnings, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Filtered Jobs "+week.Label())
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Data: payload, Filename: base + ".pdf", ContentType: "application/pdf"}, warnings, nil
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// Generate runs the full pipeline and stores the composed artifact.
func (s *PaysheetService) Generate(report, template io.Reader, opts RunOptions) (*dto.RunResponse, []string, error) {
	jobs, week, warnings, err := s.prepare(report, opts)
	if err != nil {
		s.metrics.ObserveRun("failed", 0, 0)
		return nil, nil, err
	}

	composed, err := s.composer.Compose(template, jobs, week)
	if err != nil {
		s.metrics.ObserveRun("failed", len(jobs), 0)
		return nil, nil, err
	}
	warnings = append(warnings, composed.Warnings...)

	runID := uuid.NewString()
	relPath := filepath.Join("runs", runID, composed.Filename)
	if _, err := s.storage.Save(relPath, composed.Data); err != nil {
		s.metrics.ObserveRun("failed", len(jobs), len(composed.SkippedSubs))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store pay sheet")
	}

	token, expiresAt, err := s.signer.Generate(runID, relPath)
	if err != nil {
		s.metrics.ObserveRun("failed", len(jobs), len(composed.SkippedSubs))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	s.metrics.ObserveRun("success", len(jobs), len(composed.SkippedSubs))
	s.logger.Sugar().Infow("pay sheet generated",
		"run_id", runID, "team", opts.Team, "jobs", len(jobs),
		"skipped_subs", len(composed.SkippedSubs), "artifact", composed.Filename)

	return &dto.RunResponse{
		RunID:        runID,
		Week:         weekDTO(week),
		ArtifactName: composed.Filename,
		DownloadURL:  fmt.Sprintf("%s/paysheets/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresAt:    expiresAt,
		SkippedSubs:  composed.SkippedSubs,
		JobCounts:    composed.JobCounts,
	}, warnings, nil
}

// ResolveDownload validates a signed token and locates the stored artifact.
func (s *PaysheetService) ResolveDownload(token string) (*Download, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	path := s.storage.Path(relPath)
	if _, err := os.Stat(path); err != nil {
		return nil, appErrors.ErrNotFound
	}
	return &Download{Path: path, Filename: filepath.Base(relPath)}, nil
}

// prepare runs the shared ingest/infer/filter front half of the pipeline.
func (s *PaysheetService) prepare(report io.Reader, opts RunOptions) ([]models.FilteredJob, models.WeekRange, []string, error) {
	table, warnings, err := s.ingest.Parse(report)
	if err != nil {
		return nil, models.WeekRange{}, nil, err
	}

	var week models.WeekRange
	if opts.Week != nil {
		week = *opts.Week
	} else {
		week = s.weeks.Infer(table)
	}

	roster := models.Roster{Team: opts.Team, Names: s.rosters.Load(opts.Team)}
	jobs, filterWarnings := s.filter.Filter(table, roster)
	warnings = append(warnings, filterWarnings...)

	return jobs, week, warnings, nil
}

func buildPreview(jobs []models.FilteredJob, week models.WeekRange) *dto.PreviewResponse {
	resp := &dto.PreviewResponse{
		Week:      weekDTO(week),
		TotalJobs: len(jobs),
		Groups:    []dto.PreviewGroup{},
	}

	index := make(map[string]int)
	for _, job := range jobs {
		key := models.NormalizeName(job.Tech)
		pos, ok := index[key]
		if !ok {
			pos = len(resp.Groups)
			index[key] = pos
			resp.Groups = append(resp.Groups, dto.PreviewGroup{Tech: job.Tech, Jobs: []dto.PreviewJob{}})
		}
		entry := dto.PreviewJob{
			JobNumber:   job.JobNumber,
			JobCategory: job.JobCategory,
			Status:      job.Status,
			MissingDate: job.MissingDate,
		}
		if job.Completed.Valid {
			entry.CompletedOn = job.Completed.Time().Format("01/02/06")
		}
		resp.Groups[pos].Jobs = append(resp.Groups[pos].Jobs, entry)
	}
	return resp
}

func previewDataset(jobs []models.FilteredJob) export.Dataset {
	headers := []string{"Tech", "Job#", "Completed On", "Job Category", "Status", "Missing Date"}
	rows := make([]map[string]string, 0, len(jobs))
	for _, job := range jobs {
		completed := ""
		if job.Completed.Valid {
			completed = job.Completed.Time().Format("01/02/06")
		}
		rows = append(rows, map[string]string{
			"Tech":         job.Tech,
			"Job#":         job.JobNumber,
			"Completed On": completed,
			"Job Category": job.JobCategory,
			"Status":       job.Status,
			"Missing Date": fmt.Sprintf("%t", job.MissingDate),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func weekDTO(week models.WeekRange) dto.WeekRange {
	return dto.WeekRange{
		Start: week.Start.Format("2006-01-02"),
		End:   week.End.Format("2006-01-02"),
		Label: week.Label(),
	}
}
