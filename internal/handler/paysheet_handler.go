package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfreeman481/paysheet-api/internal/dto"
	"github.com/mfreeman481/paysheet-api/internal/models"
	"github.com/mfreeman481/paysheet-api/internal/service"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
	"github.com/mfreeman481/paysheet-api/pkg/response"
)

type paysheetService interface {
	Preview(report io.Reader, opts service.RunOptions) (*dto.PreviewResponse, []string, error)
	ExportPreview(report io.Reader, opts service.RunOptions, format string) (*service.ExportFile, []string, error)
	Generate(report, template io.Reader, opts service.RunOptions) (*dto.RunResponse, []string, error)
	ResolveDownload(token string) (*service.Download, error)
}

type weekOverrideParser interface {
	ParseOverride(start, end string) (models.WeekRange, error)
}

// PaysheetHandler exposes the preview/generate/download endpoints.
type PaysheetHandler struct {
	service   paysheetService
	weeks     weekOverrideParser
	maxUpload int64
}

// NewPaysheetHandler constructs the handler.
func NewPaysheetHandler(svc paysheetService, weeks weekOverrideParser, maxUpload int64) *PaysheetHandler {
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	return &PaysheetHandler{service: svc, weeks: weeks, maxUpload: maxUpload}
}

// Preview godoc
// @Summary Filter a job report without generating a pay sheet
// @Tags Paysheets
// @Accept multipart/form-data
// @Produce json
// @Param team formData string true "Team (Construction or Welding)"
// @Param report formData file true "Job report workbook"
// @Param weekStart formData string false "Week start override (YYYY-MM-DD)"
// @Param weekEnd formData string false "Week end override (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /paysheets/preview [post]
func (h *PaysheetHandler) Preview(c *gin.Context) {
	opts, ok := h.runOptions(c)
	if !ok {
		return
	}
	report, ok := h.openUpload(c, "report")
	if !ok {
		return
	}
	defer report.Close() //nolint:errcheck

	preview, warnings, err := h.service.Preview(report, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, warnings)
}

// ExportPreview godoc
// @Summary Export the filtered preview as CSV or PDF
// @Tags Paysheets
// @Accept multipart/form-data
// @Produce octet-stream
// @Param team formData string true "Team (Construction or Welding)"
// @Param report formData file true "Job report workbook"
// @Param format formData string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Router /paysheets/preview/export [post]
func (h *PaysheetHandler) ExportPreview(c *gin.Context) {
	opts, ok := h.runOptions(c)
	if !ok {
		return
	}
	report, ok := h.openUpload(c, "report")
	if !ok {
		return
	}
	defer report.Close() //nolint:errcheck

	file, _, err := h.service.ExportPreview(report, opts, c.PostForm("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Generate godoc
// @Summary Generate a pay sheet from a report and template
// @Tags Paysheets
// @Accept multipart/form-data
// @Produce json
// @Param team formData string true "Team (Construction or Welding)"
// @Param report formData file true "Job report workbook"
// @Param template formData file true "Pay sheet template workbook"
// @Param weekStart formData string false "Week start override (YYYY-MM-DD)"
// @Param weekEnd formData string false "Week end override (YYYY-MM-DD)"
// @Success 201 {object} response.Envelope
// @Router /paysheets/generate [post]
func (h *PaysheetHandler) Generate(c *gin.Context) {
	opts, ok := h.runOptions(c)
	if !ok {
		return
	}
	report, ok := h.openUpload(c, "report")
	if !ok {
		return
	}
	defer report.Close() //nolint:errcheck
	template, ok := h.openUpload(c, "template")
	if !ok {
		return
	}
	defer template.Close() //nolint:errcheck

	result, warnings, err := h.service.Generate(report, template, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, warnings)
}

// Download godoc
// @Summary Download a generated pay sheet artifact
// @Tags Paysheets
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /paysheets/download/{token} [get]
func (h *PaysheetHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(download.Path, download.Filename)
}

func (h *PaysheetHandler) runOptions(c *gin.Context) (service.RunOptions, bool) {
	team, err := models.ParseTeam(c.PostForm("team"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "team must be Construction or Welding"))
		return service.RunOptions{}, false
	}
	opts := service.RunOptions{Team: team}

	start := c.PostForm("weekStart")
	end := c.PostForm("weekEnd")
	if start != "" || end != "" {
		week, err := h.weeks.ParseOverride(start, end)
		if err != nil {
			response.Error(c, err)
			return service.RunOptions{}, false
		}
		opts.Week = &week
	}
	return opts, true
}

func (h *PaysheetHandler) openUpload(c *gin.Context, field string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, field+" file is required"))
		return nil, false
	}
	if header.Size > h.maxUpload {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, field+" file exceeds the upload size limit"))
		return nil, false
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open "+field+" upload"))
		return nil, false
	}
	return src, true
}
