package dto

import "time"

// ImportRowError records one rejected CSV row. A bad row never aborts the
// rest of the batch.
type ImportRowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportReport summarises a CSV import.
type ImportReport struct {
	RowsTotal   int              `json:"rows_total"`
	Imported    int              `json:"imported"`
	Occurrences int              `json:"occurrences"`
	Errors      []ImportRowError `json:"errors,omitempty"`
}

// Export job states.
const (
	ExportStatusQueued  = "QUEUED"
	ExportStatusRunning = "RUNNING"
	ExportStatusDone    = "DONE"
	ExportStatusFailed  = "FAILED"
)

// ExportJob tracks one asynchronous export.
type ExportJob struct {
	ID          string     `json:"id"`
	Calendar    string     `json:"calendar"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	File        string     `json:"file,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// EnqueueExportRequest asks for an asynchronous export.
type EnqueueExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf ics"`
}
