package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborview/calendar-api/internal/dto"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
	"github.com/harborview/calendar-api/pkg/response"
)

type importService interface {
	ImportCSV(ctx context.Context, calendar string, r io.Reader) (dto.ImportReport, error)
}

type exportService interface {
	Render(ctx context.Context, calendar, format string) ([]byte, string, string, error)
	Enqueue(ctx context.Context, calendar, format string) (dto.ExportJob, error)
	Job(ctx context.Context, id string) (dto.ExportJob, error)
}

// TransferHandler exposes CSV import and the export endpoints.
type TransferHandler struct {
	importer importService
	exporter exportService
}

// NewTransferHandler constructs the handler.
func NewTransferHandler(importer importService, exporter exportService) *TransferHandler {
	return &TransferHandler{importer: importer, exporter: exporter}
}

// Import godoc
// @Summary Import events from CSV
// @Tags Transfer
// @Accept text/csv
// @Produce json
// @Param name path string true "Calendar name"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name}/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	var body io.Reader = c.Request.Body

	// Accept either a raw CSV body or a multipart upload under "file".
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	}

	report, err := h.importer.ImportCSV(c.Request.Context(), c.Param("name"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Download the calendar as CSV, PDF or ICS
// @Tags Transfer
// @Produce octet-stream
// @Param name path string true "Calendar name"
// @Param format query string true "csv, pdf or ics"
// @Success 200 {file} binary
// @Router /calendars/{name}/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	data, contentType, filename, err := h.exporter.Render(c.Request.Context(), c.Param("name"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// EnqueueExport godoc
// @Summary Schedule an asynchronous export
// @Tags Transfer
// @Accept json
// @Produce json
// @Param name path string true "Calendar name"
// @Param request body dto.EnqueueExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Router /calendars/{name}/exports [post]
func (h *TransferHandler) EnqueueExport(c *gin.Context) {
	var req dto.EnqueueExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload"))
		return
	}

	job, err := h.exporter.Enqueue(c.Request.Context(), c.Param("name"), req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Report the state of an asynchronous export
// @Tags Transfer
// @Produce json
// @Param id path string true "Export job id"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *TransferHandler) ExportStatus(c *gin.Context) {
	job, err := h.exporter.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
