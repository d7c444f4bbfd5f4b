package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	"github.com/harborview/calendar-api/internal/repository"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

type calendarStore interface {
	Events(name string) (*repository.EventRepository, error)
	WithEdit(name string, fn func(events *repository.EventRepository) error) error
}

type engineMetrics interface {
	EventsCreated(n int)
	ConflictDetected(declined bool)
	ExpansionObserved(n int)
}

// EventService is the edit engine: it orchestrates normalize → expand →
// conflict-check → commit for every mutation, all-or-nothing. Any failure
// at any stage leaves the store exactly as it was.
type EventService struct {
	calendars  calendarStore
	validator  *EventValidator
	recurrence *RecurrenceService
	conflicts  *ConflictService
	metrics    engineMetrics
	logger     *zap.Logger
}

// NewEventService constructs the engine. metrics may be nil.
func NewEventService(calendars calendarStore, validator *EventValidator, recurrence *RecurrenceService, conflicts *ConflictService, metrics engineMetrics, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		calendars:  calendars,
		validator:  validator,
		recurrence: recurrence,
		conflicts:  conflicts,
		metrics:    metrics,
		logger:     logger,
	}
}

// Create validates a draft, expands it if recurring and commits the whole
// batch. Conflicts are always detected; autoDecline decides whether they
// abort the create or are tolerated.
func (s *EventService) Create(ctx context.Context, calendar string, draft dto.EventDraft, autoDecline bool) (int, error) {
	ev, err := s.validator.Normalize(draft)
	if err != nil {
		return 0, err
	}
	ev.SeriesID = uuid.NewString()

	batch := []models.Event{ev}
	if ev.Recurring {
		batch, err = s.recurrence.Expand(ev)
		if err != nil {
			return 0, err
		}
		if s.metrics != nil {
			s.metrics.ExpansionObserved(len(batch))
		}
	}

	err = s.calendars.WithEdit(calendar, func(events *repository.EventRepository) error {
		if hit := s.conflicts.FirstConflict(batch, events.All(), nil); hit != nil {
			if s.metrics != nil {
				s.metrics.ConflictDetected(autoDecline)
			}
			if autoDecline {
				return appErrors.Clone(appErrors.ErrEventConflict,
					fmt.Sprintf("conflicts with %q (%s)", hit.Subject, hit.Start.Format("2006-01-02T15:04:05")))
			}
			s.logger.Warn("event conflict tolerated",
				zap.String("calendar", calendar),
				zap.String("subject", ev.Subject),
				zap.String("conflicts_with", hit.Subject))
		}
		events.Apply(nil, batch)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.EventsCreated(len(batch))
	}
	s.logger.Info("events created",
		zap.String("calendar", calendar),
		zap.String("subject", ev.Subject),
		zap.Int("occurrences", len(batch)))
	return len(batch), nil
}

// EditByKey edits the single occurrence identified exactly by (subject,
// start, end). The patch overlays the stored occurrence, the merge is
// re-normalized, a newly-recurring or rule-changed result is re-expanded,
// and the replacement set is conflict-checked against the store minus the
// original. Returns 1, the number of edit targets.
func (s *EventService) EditByKey(ctx context.Context, calendar, subject string, start, end time.Time, patch dto.EventPatch) (int, error) {
	key := models.EventKey{Subject: subject, Start: start, End: end}
	err := s.calendars.WithEdit(calendar, func(events *repository.EventRepository) error {
		orig, ok := events.Get(key)
		if !ok {
			return appErrors.Clone(appErrors.ErrIllegalArgument, "unknown event: "+subject)
		}

		replacement, err := s.replacementFor(orig, patch)
		if err != nil {
			return err
		}

		exclude := map[models.EventKey]struct{}{key: {}}
		if hit := s.conflicts.FirstConflict(replacement, events.All(), exclude); hit != nil {
			if s.metrics != nil {
				s.metrics.ConflictDetected(true)
			}
			return appErrors.Clone(appErrors.ErrEventConflict,
				fmt.Sprintf("edit conflicts with %q (%s)", hit.Subject, hit.Start.Format("2006-01-02T15:04:05")))
		}

		events.Apply([]models.EventKey{key}, replacement)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// EditBySubject edits every occurrence whose subject matches, optionally
// restricted to starts at or after from. Matching is by name only, not by
// series lineage. The count of originally selected occurrences is returned
// even when re-expansion changes how many rows replace them.
func (s *EventService) EditBySubject(ctx context.Context, calendar, subject string, from *time.Time, patch dto.EventPatch) (int, error) {
	selected := 0
	err := s.calendars.WithEdit(calendar, func(events *repository.EventRepository) error {
		var targets []models.Event
		if from != nil {
			targets = events.StartingFrom(subject, *from)
		} else {
			targets = events.BySubject(subject)
		}
		if len(targets) == 0 {
			return appErrors.Clone(appErrors.ErrIllegalArgument, "no events found with subject: "+subject)
		}
		selected = len(targets)

		removeKeys := make([]models.EventKey, 0, len(targets))
		byKey := make(map[models.EventKey]models.Event)
		order := make([]models.EventKey, 0, len(targets))
		exclude := make(map[models.EventKey]struct{}, len(targets))
		for _, target := range targets {
			removeKeys = append(removeKeys, target.Key())
			exclude[target.Key()] = struct{}{}

			rows, err := s.replacementFor(target, patch)
			if err != nil {
				return err
			}
			for _, row := range rows {
				if _, seen := byKey[row.Key()]; !seen {
					order = append(order, row.Key())
				}
				byKey[row.Key()] = row
			}
		}

		replacement := make([]models.Event, 0, len(order))
		for _, k := range order {
			replacement = append(replacement, byKey[k])
		}

		if hit := s.conflicts.FirstConflict(replacement, events.All(), exclude); hit != nil {
			if s.metrics != nil {
				s.metrics.ConflictDetected(true)
			}
			return appErrors.Clone(appErrors.ErrEventConflict,
				fmt.Sprintf("edit conflicts with %q (%s)", hit.Subject, hit.Start.Format("2006-01-02T15:04:05")))
		}

		events.Apply(removeKeys, replacement)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return selected, nil
}

// replacementFor merges the patch into one stored occurrence and returns
// the rows that replace it: a full expansion when the merge introduces
// recurrence or changes the rule, otherwise the single merged occurrence.
func (s *EventService) replacementFor(orig models.Event, patch dto.EventPatch) ([]models.Event, error) {
	merged, err := s.validator.Normalize(overlay(orig, patch))
	if err != nil {
		return nil, err
	}

	if merged.Recurring && (!orig.Recurring || !models.RuleEqual(orig.Recurrence, merged.Recurrence)) {
		merged.SeriesID = uuid.NewString()
		rows, err := s.recurrence.Expand(merged)
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.ExpansionObserved(len(rows))
		}
		return rows, nil
	}

	merged.SeriesID = orig.SeriesID
	return []models.Event{merged}, nil
}

// overlay builds the draft for re-normalization: the stored occurrence's
// fields with the patch's non-nil fields on top. Touching start or end
// re-derives the all-day state; leaving both alone preserves it.
func overlay(base models.Event, patch dto.EventPatch) dto.EventDraft {
	draft := DraftFromEvent(base)

	if patch.Subject != nil {
		draft.Subject = *patch.Subject
	}
	if patch.Start != nil || patch.End != nil {
		draft.AllDay = nil
		if patch.Start != nil {
			draft.Start = patch.Start
		}
		if patch.End != nil {
			draft.End = patch.End
		}
	}
	if patch.AllDay != nil {
		draft.AllDay = patch.AllDay
	}
	if patch.Description != nil {
		draft.Description = patch.Description
	}
	if patch.Location != nil {
		draft.Location = patch.Location
	}
	if patch.Public != nil {
		draft.Public = patch.Public
	}
	if patch.Recurring != nil {
		draft.Recurring = patch.Recurring
	}
	if patch.Recurrence != nil {
		draft.Recurrence = patch.Recurrence
		if patch.Recurring == nil {
			recurring := true
			draft.Recurring = &recurring
		}
	}
	if draft.Recurring != nil && !*draft.Recurring {
		draft.Recurrence = nil
	}
	return draft
}

// EventsOnDate returns occurrences intersecting the calendar day.
func (s *EventService) EventsOnDate(ctx context.Context, calendar string, day time.Time) ([]models.Event, error) {
	events, err := s.calendars.Events(calendar)
	if err != nil {
		return nil, err
	}
	return events.OnDate(day), nil
}

// EventsInRange returns occurrences intersecting [from, to].
func (s *EventService) EventsInRange(ctx context.Context, calendar string, from, to time.Time) ([]models.Event, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDateTimeRange, "range end must not be before range start")
	}
	events, err := s.calendars.Events(calendar)
	if err != nil {
		return nil, err
	}
	return events.InRange(from, to), nil
}

// AllEvents returns every occurrence in the calendar.
func (s *EventService) AllEvents(ctx context.Context, calendar string) ([]models.Event, error) {
	events, err := s.calendars.Events(calendar)
	if err != nil {
		return nil, err
	}
	return events.All(), nil
}

// IsBusy reports whether any occurrence's closed interval contains the
// instant.
func (s *EventService) IsBusy(ctx context.Context, calendar string, at time.Time) (bool, error) {
	events, err := s.calendars.Events(calendar)
	if err != nil {
		return false, err
	}
	return s.conflicts.BusyAt(at, events.All()), nil
}
