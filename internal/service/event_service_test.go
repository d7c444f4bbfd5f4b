package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	"github.com/harborview/calendar-api/internal/repository"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

const testCalendar = "work"

func newEngine(t *testing.T) (*EventService, *repository.CalendarRepository) {
	t.Helper()
	calendars := repository.NewCalendarRepository()
	require.NoError(t, calendars.Create(models.Calendar{Name: testCalendar, Timezone: "America/New_York"}))
	svc := NewEventService(calendars, NewEventValidator(nil), NewRecurrenceService(0, nil), NewConflictService(), nil, nil)
	return svc, calendars
}

func timedDraft(subject string, start time.Time, d time.Duration) dto.EventDraft {
	end := start.Add(d)
	return dto.EventDraft{Subject: subject, Start: ldt(start), End: ldt(end)}
}

func storeEvents(t *testing.T, calendars *repository.CalendarRepository) []models.Event {
	t.Helper()
	events, err := calendars.Events(testCalendar)
	require.NoError(t, err)
	return events.All()
}

func TestCreateSingleEvent(t *testing.T) {
	svc, calendars := newEngine(t)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	created, err := svc.Create(context.Background(), testCalendar, timedDraft("Standup", start, 30*time.Minute), false)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	all := storeEvents(t, calendars)
	require.Len(t, all, 1)
	assert.Equal(t, "Standup", all[0].Subject)
	assert.NotEmpty(t, all[0].SeriesID)
	assert.False(t, all[0].Recurring)
}

func TestCreateRecurringStoresIndependentOccurrences(t *testing.T) {
	svc, calendars := newEngine(t)
	draft := timedDraft("Standup", time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), time.Hour)
	draft.Recurrence = &dto.RecurrenceDraft{RepeatDays: []string{"M", "W", "F"}, Count: intPtr(5)}

	created, err := svc.Create(context.Background(), testCalendar, draft, false)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	all := storeEvents(t, calendars)
	require.Len(t, all, 5)
	series := all[0].SeriesID
	require.NotEmpty(t, series)
	for _, occ := range all {
		assert.Equal(t, series, occ.SeriesID)
		assert.True(t, occ.Recurring)
		require.NotNil(t, occ.Recurrence)
	}
}

func TestCreateUnknownCalendar(t *testing.T) {
	svc, _ := newEngine(t)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	_, err := svc.Create(context.Background(), "ghost", timedDraft("Standup", start, time.Hour), false)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCreateConflictAutoDeclined(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)

	_, err = svc.Create(ctx, testCalendar, timedDraft("Review", start.Add(30*time.Minute), time.Hour), true)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEventConflict))
	assert.Len(t, storeEvents(t, calendars), 1)
}

func TestCreateConflictToleratedWithoutAutoDecline(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, testCalendar, timedDraft("Review", start.Add(30*time.Minute), time.Hour), false)
	require.NoError(t, err)

	assert.Len(t, storeEvents(t, calendars), 2)
}

func TestCreateAbuttingEventsNeverConflict(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	_, err := svc.Create(ctx, testCalendar, timedDraft("First", start, time.Hour), true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, testCalendar, timedDraft("Second", start.Add(time.Hour), time.Hour), true)
	require.NoError(t, err)

	assert.Len(t, storeEvents(t, calendars), 2)
}

func TestCreateIdenticalKeyReplacesSilently(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	draft := timedDraft("Standup", start, time.Hour)
	_, err := svc.Create(ctx, testCalendar, draft, false)
	require.NoError(t, err)

	draft.Location = strPtr("Room 9")
	_, err = svc.Create(ctx, testCalendar, draft, false)
	require.NoError(t, err)

	all := storeEvents(t, calendars)
	require.Len(t, all, 1)
	assert.Equal(t, "Room 9", all[0].Location)
}

func TestEditByKeyUnknownEvent(t *testing.T) {
	svc, _ := newEngine(t)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	_, err := svc.EditByKey(context.Background(), testCalendar, "Ghost", start, start.Add(time.Hour), dto.EventPatch{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrIllegalArgument))
}

func TestEditByKeyMovesOccurrence(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)

	newStart := start.Add(3 * time.Hour)
	edited, err := svc.EditByKey(ctx, testCalendar, "Standup", start, start.Add(time.Hour), dto.EventPatch{
		Start: ldt(newStart),
		End:   ldt(newStart.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, edited)

	all := storeEvents(t, calendars)
	require.Len(t, all, 1)
	assert.True(t, all[0].Start.Equal(newStart))
}

func TestEditByKeyPreservesSeriesIDWithoutReExpansion(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	draft := timedDraft("Standup", time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), time.Hour)
	draft.Recurrence = &dto.RecurrenceDraft{RepeatDays: []string{"W"}, Count: intPtr(3)}
	_, err := svc.Create(ctx, testCalendar, draft, false)
	require.NoError(t, err)

	before := storeEvents(t, calendars)
	require.Len(t, before, 3)
	target := before[1]

	edited, err := svc.EditByKey(ctx, testCalendar, target.Subject, target.Start, target.End, dto.EventPatch{
		Location: strPtr("Room 4"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, edited)

	after := storeEvents(t, calendars)
	require.Len(t, after, 3)
	assert.Equal(t, target.SeriesID, after[1].SeriesID)
	assert.Equal(t, "Room 4", after[1].Location)
	assert.Equal(t, "", after[0].Location)
}

func TestEditByKeyIntroducingRecurrenceExpands(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)
	origSeries := storeEvents(t, calendars)[0].SeriesID

	edited, err := svc.EditByKey(ctx, testCalendar, "Standup", start, start.Add(time.Hour), dto.EventPatch{
		Recurrence: &dto.RecurrenceDraft{RepeatDays: []string{"W"}, Count: intPtr(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, edited)

	all := storeEvents(t, calendars)
	require.Len(t, all, 3)
	assert.NotEqual(t, origSeries, all[0].SeriesID)
	for _, occ := range all {
		assert.Equal(t, all[0].SeriesID, occ.SeriesID)
	}
}

func TestEditByKeyConflictAbortsAtomically(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, testCalendar, timedDraft("Review", start.Add(2*time.Hour), time.Hour), false)
	require.NoError(t, err)
	before := storeEvents(t, calendars)

	// Moving Standup onto Review must fail even though creates tolerate
	// conflicts: edits always abort.
	_, err = svc.EditByKey(ctx, testCalendar, "Standup", start, start.Add(time.Hour), dto.EventPatch{
		Start: ldt(start.Add(2*time.Hour + 30*time.Minute)),
		End:   ldt(start.Add(3*time.Hour + 30*time.Minute)),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEventConflict))
	assert.Equal(t, before, storeEvents(t, calendars))
}

func TestEditByKeyInvalidPatchLeavesStoreUntouched(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)
	before := storeEvents(t, calendars)

	_, err = svc.EditByKey(ctx, testCalendar, "Standup", start, start.Add(time.Hour), dto.EventPatch{
		End: ldt(start.Add(-time.Hour)),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidDateTimeRange))
	assert.Equal(t, before, storeEvents(t, calendars))
}

func TestEditByKeyCanMoveOntoOwnSlot(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)

	// A patch that keeps the interval conflicts only with the occurrence
	// being replaced, which is excluded from the check.
	edited, err := svc.EditByKey(ctx, testCalendar, "Standup", start, start.Add(time.Hour), dto.EventPatch{
		Description: strPtr("moved nowhere"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, edited)
}

func TestEditBySubjectNoMatches(t *testing.T) {
	svc, _ := newEngine(t)
	_, err := svc.EditBySubject(context.Background(), testCalendar, "Ghost", nil, dto.EventPatch{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrIllegalArgument))
}

func TestEditBySubjectRenamesEveryOccurrence(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	draft := timedDraft("Standup", time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), time.Hour)
	draft.Recurrence = &dto.RecurrenceDraft{RepeatDays: []string{"M", "W"}, Count: intPtr(4)}
	_, err := svc.Create(ctx, testCalendar, draft, false)
	require.NoError(t, err)

	edited, err := svc.EditBySubject(ctx, testCalendar, "Standup", nil, dto.EventPatch{
		Subject: strPtr("Daily Sync"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, edited)

	all := storeEvents(t, calendars)
	require.Len(t, all, 4)
	for _, occ := range all {
		assert.Equal(t, "Daily Sync", occ.Subject)
	}
}

func TestEditBySubjectFromThreshold(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	draft := timedDraft("Standup", time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), time.Hour)
	draft.Recurrence = &dto.RecurrenceDraft{RepeatDays: []string{"M", "W", "F"}, Count: intPtr(5)}
	_, err := svc.Create(ctx, testCalendar, draft, false)
	require.NoError(t, err)

	// Occurrences land on Jan 1, 3, 6, 8, 10; the threshold selects the
	// last three.
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)
	edited, err := svc.EditBySubject(ctx, testCalendar, "Standup", &from, dto.EventPatch{
		Location: strPtr("Annex"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, edited)

	all := storeEvents(t, calendars)
	require.Len(t, all, 5)
	assert.Equal(t, "", all[0].Location)
	assert.Equal(t, "", all[1].Location)
	assert.Equal(t, "Annex", all[2].Location)
	assert.Equal(t, "Annex", all[4].Location)
}

func TestEditBySubjectMatchesByNameNotLineage(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	seriesDraft := timedDraft("Standup", time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), time.Hour)
	seriesDraft.Recurrence = &dto.RecurrenceDraft{RepeatDays: []string{"W"}, Count: intPtr(2)}
	_, err := svc.Create(ctx, testCalendar, seriesDraft, false)
	require.NoError(t, err)
	// A stray one-off sharing the subject.
	_, err = svc.Create(ctx, testCalendar, timedDraft("Standup", time.Date(2025, 2, 3, 15, 0, 0, 0, time.Local), time.Hour), false)
	require.NoError(t, err)

	edited, err := svc.EditBySubject(ctx, testCalendar, "Standup", nil, dto.EventPatch{
		Description: strPtr("updated"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, edited)

	for _, occ := range storeEvents(t, calendars) {
		assert.Equal(t, "updated", occ.Description)
	}
}

func TestEditBySubjectConflictAbortsWholeBatch(t *testing.T) {
	svc, calendars := newEngine(t)
	ctx := context.Background()
	draft := timedDraft("Standup", time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), time.Hour)
	draft.Recurrence = &dto.RecurrenceDraft{RepeatDays: []string{"W"}, Count: intPtr(2)}
	_, err := svc.Create(ctx, testCalendar, draft, false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, testCalendar, timedDraft("Blocker", time.Date(2025, 1, 1, 15, 0, 0, 0, time.Local), time.Hour), false)
	require.NoError(t, err)
	before := storeEvents(t, calendars)

	// Shifting the series three hours later lands the first occurrence on
	// Blocker; nothing may change.
	_, err = svc.EditBySubject(ctx, testCalendar, "Standup", nil, dto.EventPatch{
		Start: ldt(time.Date(2025, 1, 1, 15, 0, 0, 0, time.Local)),
		End:   ldt(time.Date(2025, 1, 1, 16, 0, 0, 0, time.Local)),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEventConflict))
	assert.Equal(t, before, storeEvents(t, calendars))
}

func TestEventsInRangeRejectsInvertedRange(t *testing.T) {
	svc, _ := newEngine(t)
	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local)
	_, err := svc.EventsInRange(context.Background(), testCalendar, from, from.AddDate(0, 0, -1))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidDateTimeRange))
}

func TestIsBusyThroughEngine(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	_, err := svc.Create(ctx, testCalendar, timedDraft("Standup", start, time.Hour), false)
	require.NoError(t, err)

	busy, err := svc.IsBusy(ctx, testCalendar, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = svc.IsBusy(ctx, testCalendar, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, busy)
}
