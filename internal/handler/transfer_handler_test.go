package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/calendar-api/internal/dto"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

type importServiceMock struct {
	received string
	report   dto.ImportReport
}

func (m *importServiceMock) ImportCSV(_ context.Context, _ string, r io.Reader) (dto.ImportReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dto.ImportReport{}, err
	}
	m.received = string(data)
	return m.report, nil
}

type exportServiceMock struct {
	renderErr error
	job       dto.ExportJob
	jobErr    error
}

func (m *exportServiceMock) Render(_ context.Context, calendar, format string) ([]byte, string, string, error) {
	if m.renderErr != nil {
		return nil, "", "", m.renderErr
	}
	return []byte("Subject\n"), "text/csv", calendar + "." + format, nil
}

func (m *exportServiceMock) Enqueue(context.Context, string, string) (dto.ExportJob, error) {
	return m.job, nil
}

func (m *exportServiceMock) Job(context.Context, string) (dto.ExportJob, error) {
	if m.jobErr != nil {
		return dto.ExportJob{}, m.jobErr
	}
	return m.job, nil
}

func transferTestContext(t *testing.T, method, target string, body io.Reader, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.Request = req
	c.Params = gin.Params{{Key: "name", Value: "work"}}
	return c, w
}

func TestTransferHandlerImportRawBody(t *testing.T) {
	importer := &importServiceMock{report: dto.ImportReport{RowsTotal: 1, Imported: 1}}
	h := NewTransferHandler(importer, &exportServiceMock{})
	csvBody := "Subject,Start Date\nStandup,2025-01-06\n"
	c, w := transferTestContext(t, http.MethodPost, "/calendars/work/import", strings.NewReader(csvBody), "text/csv")

	h.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvBody, importer.received)

	var envelope struct {
		Data dto.ImportReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Imported)
}

func TestTransferHandlerImportMultipart(t *testing.T) {
	importer := &importServiceMock{}
	h := NewTransferHandler(importer, &exportServiceMock{})

	var buf bytes.Buffer
	mw := multipartWriter(t, &buf, "Subject,Start Date\nStandup,2025-01-06\n")
	c, w := transferTestContext(t, http.MethodPost, "/calendars/work/import", &buf, mw)

	h.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, importer.received, "Standup")
}

func TestTransferHandlerExport(t *testing.T) {
	h := NewTransferHandler(&importServiceMock{}, &exportServiceMock{})
	c, w := transferTestContext(t, http.MethodGet, "/calendars/work/export?format=csv", http.NoBody, "")

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="work.csv"`)
}

func TestTransferHandlerExportUnknownCalendar(t *testing.T) {
	h := NewTransferHandler(&importServiceMock{}, &exportServiceMock{
		renderErr: appErrors.Clone(appErrors.ErrNotFound, "unknown calendar"),
	})
	c, w := transferTestContext(t, http.MethodGet, "/calendars/work/export", http.NoBody, "")

	h.Export(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferHandlerEnqueueExport(t *testing.T) {
	h := NewTransferHandler(&importServiceMock{}, &exportServiceMock{
		job: dto.ExportJob{ID: "job-1", Status: dto.ExportStatusQueued},
	})
	body, _ := json.Marshal(dto.EnqueueExportRequest{Format: "pdf"})
	c, w := transferTestContext(t, http.MethodPost, "/calendars/work/exports", bytes.NewReader(body), "application/json")

	h.EnqueueExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)

	var envelope struct {
		Data dto.ExportJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "job-1", envelope.Data.ID)
}

func TestTransferHandlerExportStatusNotFound(t *testing.T) {
	h := NewTransferHandler(&importServiceMock{}, &exportServiceMock{
		jobErr: appErrors.Clone(appErrors.ErrNotFound, "unknown export job"),
	})
	c, w := transferTestContext(t, http.MethodGet, "/exports/nope", http.NoBody, "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.ExportStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartWriter(t *testing.T, buf *bytes.Buffer, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", "events.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}
