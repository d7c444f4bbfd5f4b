package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

type eventCreator interface {
	Create(ctx context.Context, calendar string, draft dto.EventDraft, autoDecline bool) (int, error)
}

// ImportService parses a CSV export back into create requests. Each row is
// one create with auto-decline on; a failing row is reported and the batch
// keeps going — batch policy lives here, never in the engine.
type ImportService struct {
	events  eventCreator
	maxRows int
	logger  *zap.Logger
}

// NewImportService constructs the importer. maxRows caps a single import;
// zero means no cap.
func NewImportService(events eventCreator, maxRows int, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{events: events, maxRows: maxRows, logger: logger}
}

// CSV column names, matching the export layout.
const (
	colSubject     = "subject"
	colStartDate   = "start date"
	colStartTime   = "start time"
	colEndDate     = "end date"
	colEndTime     = "end time"
	colAllDay      = "all day event"
	colDescription = "description"
	colLocation    = "location"
	colPrivate     = "private"
)

var importDateLayouts = []string{"2006-01-02", "01/02/2006"}
var importTimeLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04:05 PM"}

// ImportCSV reads the rows of r into the calendar and reports per-row
// outcomes.
func (s *ImportService) ImportCSV(ctx context.Context, calendar string, r io.Reader) (dto.ImportReport, error) {
	report := dto.ImportReport{}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return report, appErrors.Clone(appErrors.ErrValidation, "import requires a CSV header row")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colSubject]; !ok {
		return report, appErrors.Clone(appErrors.ErrValidation, "import header is missing the Subject column")
	}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.RowsTotal++
			report.Errors = append(report.Errors, rowError(row, appErrors.Clone(appErrors.ErrValidation, "malformed CSV row")))
			continue
		}
		report.RowsTotal++
		if s.maxRows > 0 && report.RowsTotal > s.maxRows {
			report.Errors = append(report.Errors, rowError(row,
				appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("import truncated at %d rows", s.maxRows))))
			break
		}

		draft, err := s.rowToDraft(cols, record)
		if err != nil {
			report.Errors = append(report.Errors, rowError(row, err))
			continue
		}

		created, err := s.events.Create(ctx, calendar, draft, true)
		if err != nil {
			report.Errors = append(report.Errors, rowError(row, err))
			continue
		}
		report.Imported++
		report.Occurrences += created
	}

	s.logger.Info("csv import finished",
		zap.String("calendar", calendar),
		zap.Int("rows", report.RowsTotal),
		zap.Int("imported", report.Imported),
		zap.Int("failed", len(report.Errors)))
	return report, nil
}

func (s *ImportService) rowToDraft(cols map[string]int, record []string) (dto.EventDraft, error) {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	draft := dto.EventDraft{Subject: cell(colSubject)}

	startDate := cell(colStartDate)
	if startDate == "" {
		return draft, appErrors.Clone(appErrors.ErrInvalidDateTimeRange, "start date is required")
	}
	day, err := parseImportDate(startDate)
	if err != nil {
		return draft, err
	}

	allDay := parseImportBool(cell(colAllDay))

	if allDay {
		yes := true
		draft.AllDay = &yes
		start := dto.LocalDateTime{Time: day}
		draft.Start = &start
		if endDate := cell(colEndDate); endDate != "" {
			endDay, err := parseImportDate(endDate)
			if err != nil {
				return draft, err
			}
			// The CSV end date is inclusive; the engine's all-day end
			// boundary is exclusive.
			end := dto.LocalDateTime{Time: endDay.AddDate(0, 0, 1)}
			draft.End = &end
		}
	} else {
		start := day
		if startTime := cell(colStartTime); startTime != "" {
			tod, err := parseImportTime(startTime)
			if err != nil {
				return draft, err
			}
			start = start.Add(tod)
		}
		startVal := dto.LocalDateTime{Time: start}
		draft.Start = &startVal

		endTime := cell(colEndTime)
		if endTime != "" {
			endDay := day
			if endDate := cell(colEndDate); endDate != "" {
				endDay, err = parseImportDate(endDate)
				if err != nil {
					return draft, err
				}
			}
			tod, err := parseImportTime(endTime)
			if err != nil {
				return draft, err
			}
			end := dto.LocalDateTime{Time: endDay.Add(tod)}
			draft.End = &end
		}
	}

	if v := cell(colDescription); v != "" {
		draft.Description = &v
	}
	if v := cell(colLocation); v != "" {
		draft.Location = &v
	}
	if v := cell(colPrivate); v != "" {
		public := !parseImportBool(v)
		draft.Public = &public
	}
	return draft, nil
}

func parseImportDate(raw string) (time.Time, error) {
	for _, layout := range importDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return models.DateOf(t), nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDateTimeRange, "invalid date: "+raw)
}

func parseImportTime(raw string) (time.Duration, error) {
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(raw)); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrInvalidDateTimeRange, "invalid time: "+raw)
}

func parseImportBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

func rowError(row int, err error) dto.ImportRowError {
	appErr := appErrors.FromError(err)
	return dto.ImportRowError{Row: row, Code: appErr.Code, Message: appErr.Message}
}
