package service

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

// EventValidator normalizes a partially-specified draft into a canonical
// occurrence. It is pure: it never touches a store, and it applies the
// invariants in order, failing on the first violation.
type EventValidator struct {
	validate *validator.Validate
}

// NewEventValidator constructs the validator.
func NewEventValidator(validate *validator.Validate) *EventValidator {
	if validate == nil {
		validate = validator.New()
	}
	return &EventValidator{validate: validate}
}

// Normalize produces the canonical occurrence for a draft.
//
// Invariants, in order: start is required; a missing end makes the event
// all-day on start's date; start < end strictly; a recurring event carries
// a structurally valid rule; a timed recurring event must not span days.
// Normalizing an already-normalized event returns it unchanged.
func (v *EventValidator) Normalize(draft dto.EventDraft) (models.Event, error) {
	if err := v.validate.Struct(draft); err != nil {
		return models.Event{}, appErrors.Wrap(err, appErrors.ErrIllegalArgument.Code, appErrors.ErrIllegalArgument.Status, "subject is required")
	}
	if draft.Start == nil {
		return models.Event{}, appErrors.Clone(appErrors.ErrInvalidDateTimeRange, "start is required")
	}
	start := draft.Start.Time

	allDay := draft.End == nil || (draft.AllDay != nil && *draft.AllDay)

	var end time.Time
	if allDay {
		start = models.DateOf(start)
		if draft.End == nil {
			end = start.AddDate(0, 0, 1)
		} else {
			// An end on a midnight boundary is already exclusive;
			// any later time-of-day extends through that whole day.
			end = models.DateOf(draft.End.Time)
			if draft.End.Time.After(end) {
				end = end.AddDate(0, 0, 1)
			}
		}
	} else {
		end = draft.End.Time
	}
	if !start.Before(end) {
		return models.Event{}, appErrors.Clone(appErrors.ErrInvalidDateTimeRange, "start must be strictly before end")
	}

	recurring := draft.Recurring != nil && *draft.Recurring
	if draft.Recurring == nil && draft.Recurrence != nil {
		recurring = true
	}
	if !recurring && draft.Recurrence != nil {
		return models.Event{}, appErrors.Clone(appErrors.ErrInvalidEventDetails, "recurrence rule supplied for a non-recurring event")
	}

	var rule *models.RecurrenceRule
	if recurring {
		var err error
		rule, err = normalizeRule(draft.Recurrence, start)
		if err != nil {
			return models.Event{}, err
		}
		if !allDay && !models.DateOf(start).Equal(models.DateOf(end)) {
			return models.Event{}, appErrors.Clone(appErrors.ErrInvalidEventDetails, "a timed recurring event cannot span multiple days")
		}
	}

	ev := models.Event{
		Subject:    draft.Subject,
		Start:      start,
		End:        end,
		Public:     draft.Public != nil && *draft.Public,
		AllDay:     allDay,
		Recurring:  recurring,
		Recurrence: rule,
	}
	if draft.Description != nil {
		ev.Description = *draft.Description
	}
	if draft.Location != nil {
		ev.Location = *draft.Location
	}
	return ev, nil
}

func normalizeRule(raw *dto.RecurrenceDraft, start time.Time) (*models.RecurrenceRule, error) {
	if raw == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidEventDetails, "a recurring event requires a recurrence rule")
	}
	if len(raw.RepeatDays) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidEventDetails, "repeat days must not be empty")
	}

	seen := make(map[string]struct{}, len(raw.RepeatDays))
	days := make([]string, 0, len(raw.RepeatDays))
	for _, token := range raw.RepeatDays {
		name, ok := models.ParseWeekday(token)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrIllegalArgument, "unknown weekday token: "+token)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		days = append(days, name)
	}
	sort.Slice(days, func(i, j int) bool {
		a, _ := models.WeekdayIndex(days[i])
		b, _ := models.WeekdayIndex(days[j])
		return a < b
	})

	hasCount := raw.Count != nil
	hasUntil := raw.Until != nil
	if hasCount == hasUntil {
		return nil, appErrors.Clone(appErrors.ErrIllegalArgument, "exactly one of count or until must be set")
	}

	rule := &models.RecurrenceRule{RepeatDays: days}
	if hasCount {
		if *raw.Count < 1 {
			return nil, appErrors.Clone(appErrors.ErrIllegalArgument, "count must be positive")
		}
		c := *raw.Count
		rule.Count = &c
	} else {
		until := raw.Until.Time
		if until.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrInvalidEventDetails, "until must not be before start")
		}
		rule.Until = &until
	}
	return rule, nil
}

// DraftFromEvent rebuilds the draft form of a normalized occurrence. The
// edit engine overlays patches onto it before re-normalizing.
func DraftFromEvent(ev models.Event) dto.EventDraft {
	start := dto.LocalDateTime{Time: ev.Start}
	end := dto.LocalDateTime{Time: ev.End}
	allDay := ev.AllDay
	recurring := ev.Recurring
	draft := dto.EventDraft{
		Subject:   ev.Subject,
		Start:     &start,
		End:       &end,
		AllDay:    &allDay,
		Recurring: &recurring,
	}
	if ev.Description != "" {
		desc := ev.Description
		draft.Description = &desc
	}
	if ev.Location != "" {
		loc := ev.Location
		draft.Location = &loc
	}
	if ev.Public {
		public := true
		draft.Public = &public
	}
	if ev.Recurrence != nil {
		rd := dto.RecurrenceDraft{RepeatDays: append([]string(nil), ev.Recurrence.RepeatDays...)}
		if ev.Recurrence.Count != nil {
			c := *ev.Recurrence.Count
			rd.Count = &c
		}
		if ev.Recurrence.Until != nil {
			u := dto.LocalDateTime{Time: *ev.Recurrence.Until}
			rd.Until = &u
		}
		draft.Recurrence = &rd
	}
	return draft
}
