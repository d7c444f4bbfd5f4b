package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
	"github.com/harborview/calendar-api/pkg/export"
	"github.com/harborview/calendar-api/pkg/jobs"
)

type eventSource interface {
	AllEvents(ctx context.Context, calendar string) ([]models.Event, error)
}

type exportPayload struct {
	Calendar string
	Format   string
}

// ExportService renders a calendar's occurrences as CSV, PDF or ICS,
// synchronously or through a background job queue. It only ever reads the
// store; formatting never feeds back into the engine.
type ExportService struct {
	events     eventSource
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	ics        *export.ICSExporter
	queue      *jobs.Queue
	storageDir string
	logger     *zap.Logger

	mu      sync.RWMutex
	jobsMap map[string]dto.ExportJob
}

// ExportOptions configures the async worker side.
type ExportOptions struct {
	StorageDir        string
	WorkerConcurrency int
	WorkerRetries     int
}

// NewExportService constructs the exporter.
func NewExportService(events eventSource, opts ExportOptions, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StorageDir == "" {
		opts.StorageDir = "./exports"
	}
	s := &ExportService{
		events:     events,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		ics:        export.NewICSExporter(""),
		storageDir: opts.StorageDir,
		logger:     logger,
		jobsMap:    make(map[string]dto.ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    opts.WorkerConcurrency,
		MaxRetries: opts.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Render produces the export bytes plus content type and a file name.
func (s *ExportService) Render(ctx context.Context, calendar, format string) ([]byte, string, string, error) {
	events, err := s.events.AllEvents(ctx, calendar)
	if err != nil {
		return nil, "", "", err
	}

	switch format {
	case "csv":
		data, err := s.csv.Render(eventDataset(events))
		return data, "text/csv", calendar + ".csv", err
	case "pdf":
		data, err := s.pdf.Render(eventDataset(events), calendar+" agenda")
		return data, "application/pdf", calendar + ".pdf", err
	case "ics":
		data, err := s.ics.Render(calendar, events)
		return data, "text/calendar", calendar + ".ics", err
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

// Enqueue schedules an asynchronous export and returns its job record.
func (s *ExportService) Enqueue(ctx context.Context, calendar, format string) (dto.ExportJob, error) {
	switch format {
	case "csv", "pdf", "ics":
	default:
		return dto.ExportJob{}, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
	// Fail fast on unknown calendars instead of inside the worker.
	if _, err := s.events.AllEvents(ctx, calendar); err != nil {
		return dto.ExportJob{}, err
	}

	job := dto.ExportJob{
		ID:        uuid.NewString(),
		Calendar:  calendar,
		Format:    format,
		Status:    dto.ExportStatusQueued,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.jobsMap[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{
		ID:      job.ID,
		Type:    "export",
		Payload: exportPayload{Calendar: calendar, Format: format},
	}); err != nil {
		s.setStatus(job.ID, dto.ExportStatusFailed, "", err.Error())
		return dto.ExportJob{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return job, nil
}

// Job returns the state of an asynchronous export.
func (s *ExportService) Job(ctx context.Context, id string) (dto.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobsMap[id]
	if !ok {
		return dto.ExportJob{}, appErrors.Clone(appErrors.ErrNotFound, "unknown export job: "+id)
	}
	return job, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	s.setStatus(job.ID, dto.ExportStatusRunning, "", "")

	data, _, name, err := s.Render(ctx, payload.Calendar, payload.Format)
	if err != nil {
		s.setStatus(job.ID, dto.ExportStatusFailed, "", err.Error())
		return err
	}

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		s.setStatus(job.ID, dto.ExportStatusFailed, "", err.Error())
		return err
	}
	file := filepath.Join(s.storageDir, job.ID+"_"+name)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		s.setStatus(job.ID, dto.ExportStatusFailed, "", err.Error())
		return err
	}

	s.setStatus(job.ID, dto.ExportStatusDone, file, "")
	s.logger.Info("export finished",
		zap.String("job", job.ID),
		zap.String("calendar", payload.Calendar),
		zap.String("file", file))
	return nil
}

func (s *ExportService) setStatus(id, status, file, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobsMap[id]
	if !ok {
		return
	}
	job.Status = status
	job.File = file
	job.Error = errMsg
	if status == dto.ExportStatusDone || status == dto.ExportStatusFailed {
		now := time.Now()
		job.CompletedAt = &now
	}
	s.jobsMap[id] = job
}

// eventDataset renders occurrences in the CSV import/export column layout.
func eventDataset(events []models.Event) export.Dataset {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		allDay := "False"
		if ev.AllDay {
			allDay = "True"
		}
		private := "True"
		if ev.Public {
			private = "False"
		}
		endDate := ev.End
		endTime := ev.End.Format("15:04")
		if ev.AllDay {
			// Exclusive midnight boundary back to an inclusive end date.
			endDate = ev.End.AddDate(0, 0, -1)
			endTime = ""
		}
		startTime := ev.Start.Format("15:04")
		if ev.AllDay {
			startTime = ""
		}
		rows = append(rows, []string{
			ev.Subject,
			ev.Start.Format("2006-01-02"),
			startTime,
			endDate.Format("2006-01-02"),
			endTime,
			allDay,
			ev.Description,
			ev.Location,
			private,
		})
	}
	return export.Dataset{
		Headers: []string{"Subject", "Start Date", "Start Time", "End Date", "End Time", "All Day Event", "Description", "Location", "Private"},
		Rows:    rows,
	}
}
