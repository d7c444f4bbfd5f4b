package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/calendar-api/internal/dto"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

type creatorMock struct {
	drafts  []dto.EventDraft
	perRow  int
	failFor string
}

func (m *creatorMock) Create(_ context.Context, _ string, draft dto.EventDraft, autoDecline bool) (int, error) {
	if !autoDecline {
		panic("imports must auto-decline")
	}
	if m.failFor != "" && draft.Subject == m.failFor {
		return 0, appErrors.Clone(appErrors.ErrEventConflict, "conflict")
	}
	m.drafts = append(m.drafts, draft)
	if m.perRow == 0 {
		return 1, nil
	}
	return m.perRow, nil
}

const importHeader = "Subject,Start Date,Start Time,End Date,End Time,All Day Event,Description,Location,Private\n"

func TestImportCSVTimedRow(t *testing.T) {
	creator := &creatorMock{}
	svc := NewImportService(creator, 0, nil)

	csvData := importHeader +
		"Standup,2025-01-06,09:00,2025-01-06,09:30,False,daily sync,Room 2,True\n"
	report, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, report.RowsTotal)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Occurrences)
	assert.Empty(t, report.Errors)

	require.Len(t, creator.drafts, 1)
	draft := creator.drafts[0]
	assert.Equal(t, "Standup", draft.Subject)
	require.NotNil(t, draft.Start)
	assert.True(t, draft.Start.Time.Equal(time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)))
	require.NotNil(t, draft.End)
	assert.True(t, draft.End.Time.Equal(time.Date(2025, 1, 6, 9, 30, 0, 0, time.Local)))
	require.NotNil(t, draft.Public)
	assert.False(t, *draft.Public)
	require.NotNil(t, draft.Description)
	assert.Equal(t, "daily sync", *draft.Description)
}

func TestImportCSVAllDayEndDateIsInclusive(t *testing.T) {
	creator := &creatorMock{}
	svc := NewImportService(creator, 0, nil)

	csvData := importHeader +
		"Offsite,2025-01-06,,2025-01-07,,True,,,False\n"
	_, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)

	require.Len(t, creator.drafts, 1)
	draft := creator.drafts[0]
	require.NotNil(t, draft.AllDay)
	assert.True(t, *draft.AllDay)
	require.NotNil(t, draft.End)
	// Inclusive CSV end date becomes the exclusive midnight after it.
	assert.True(t, draft.End.Time.Equal(time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local)))
	require.NotNil(t, draft.Public)
	assert.True(t, *draft.Public)
}

func TestImportCSVAmericanDateAndTwelveHourTime(t *testing.T) {
	creator := &creatorMock{}
	svc := NewImportService(creator, 0, nil)

	csvData := importHeader +
		"Lunch,01/06/2025,12:00 PM,01/06/2025,1:00 PM,False,,,\n"
	report, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)

	draft := creator.drafts[0]
	assert.True(t, draft.Start.Time.Equal(time.Date(2025, 1, 6, 12, 0, 0, 0, time.Local)))
	assert.True(t, draft.End.Time.Equal(time.Date(2025, 1, 6, 13, 0, 0, 0, time.Local)))
}

func TestImportCSVBadRowDoesNotAbortBatch(t *testing.T) {
	creator := &creatorMock{}
	svc := NewImportService(creator, 0, nil)

	csvData := importHeader +
		"Broken,not-a-date,09:00,,10:00,False,,,\n" +
		"Fine,2025-01-06,09:00,2025-01-06,10:00,False,,,\n"
	report, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsTotal)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, appErrors.ErrInvalidDateTimeRange.Code, report.Errors[0].Code)
}

func TestImportCSVConflictRowReported(t *testing.T) {
	creator := &creatorMock{failFor: "Clash"}
	svc := NewImportService(creator, 0, nil)

	csvData := importHeader +
		"Clash,2025-01-06,09:00,2025-01-06,10:00,False,,,\n" +
		"Fine,2025-01-07,09:00,2025-01-07,10:00,False,,,\n"
	report, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, appErrors.ErrEventConflict.Code, report.Errors[0].Code)
}

func TestImportCSVRecurringRowsAccumulateOccurrences(t *testing.T) {
	creator := &creatorMock{perRow: 5}
	svc := NewImportService(creator, 0, nil)

	csvData := importHeader +
		"Standup,2025-01-06,09:00,2025-01-06,09:30,False,,,\n"
	report, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 5, report.Occurrences)
}

func TestImportCSVMaxRowsTruncates(t *testing.T) {
	creator := &creatorMock{}
	svc := NewImportService(creator, 2, nil)

	csvData := importHeader +
		"A,2025-01-06,09:00,2025-01-06,10:00,False,,,\n" +
		"B,2025-01-07,09:00,2025-01-07,10:00,False,,,\n" +
		"C,2025-01-08,09:00,2025-01-08,10:00,False,,,\n"
	report, err := svc.ImportCSV(context.Background(), "work", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "truncated")
}

func TestImportCSVRequiresSubjectColumn(t *testing.T) {
	svc := NewImportService(&creatorMock{}, 0, nil)
	_, err := svc.ImportCSV(context.Background(), "work", strings.NewReader("Nope,Columns\nx,y\n"))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
