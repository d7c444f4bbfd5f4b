package service

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

const defaultMaxOccurrences = 5000

// RecurrenceService expands a normalized recurring event into its concrete
// occurrences.
type RecurrenceService struct {
	maxOccurrences int
	logger         *zap.Logger
}

// NewRecurrenceService constructs the expander. maxOccurrences caps a
// single expansion; zero means the default cap.
func NewRecurrenceService(maxOccurrences int, logger *zap.Logger) *RecurrenceService {
	if maxOccurrences <= 0 {
		maxOccurrences = defaultMaxOccurrences
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurrenceService{maxOccurrences: maxOccurrences, logger: logger}
}

// Expand returns the chronologically ordered occurrences of a recurring
// event. Every occurrence copies the event's fields and rule verbatim and
// shares one series id.
//
// The walk starts at the event's start, jumps to the next-or-same repeat
// day (cyclic over the Monday-first week), emits an occurrence there, then
// advances a single calendar day and repeats. Stepping one day at a time
// lets several repeat days within the same week each produce an occurrence
// in date order. A count terminal emits exactly count occurrences; an
// until terminal is inclusive of the until calendar day and may legally
// produce an empty result.
func (s *RecurrenceService) Expand(ev models.Event) ([]models.Event, error) {
	if !ev.Recurring || ev.Recurrence == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidEventDetails, "expand requires a recurring event")
	}
	rule := ev.Recurrence

	// Fixed 7-slot membership array keeps the wraparound arithmetic
	// explicit.
	var repeatDays [7]bool
	for _, name := range rule.RepeatDays {
		idx, ok := models.WeekdayIndex(name)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrIllegalArgument, "unknown weekday token: "+name)
		}
		repeatDays[idx] = true
	}

	seriesID := ev.SeriesID
	if seriesID == "" {
		seriesID = uuid.NewString()
	}
	duration := ev.End.Sub(ev.Start)

	// cursor keeps the original time-of-day throughout; only the date
	// component advances.
	cursor := ev.Start
	out := make([]models.Event, 0)
	for {
		offset := 0
		for ; offset < 7; offset++ {
			if repeatDays[(models.MondayIndex(cursor.Weekday())+offset)%7] {
				break
			}
		}
		cursor = cursor.AddDate(0, 0, offset)

		if rule.Until != nil && models.DateOf(cursor).After(models.DateOf(*rule.Until)) {
			break
		}

		occ := ev.Clone()
		occ.SeriesID = seriesID
		if ev.AllDay {
			occ.Start = models.DateOf(cursor)
			occ.End = occ.Start.AddDate(0, 0, 1)
		} else {
			occ.Start = cursor
			occ.End = cursor.Add(duration)
		}
		out = append(out, occ)

		if rule.Count != nil && len(out) >= *rule.Count {
			break
		}
		if len(out) >= s.maxOccurrences {
			s.logger.Warn("recurrence expansion hit cap",
				zap.String("subject", ev.Subject),
				zap.Int("cap", s.maxOccurrences))
			return nil, appErrors.Clone(appErrors.ErrInvalidEventDetails,
				fmt.Sprintf("recurrence expands beyond %d occurrences", s.maxOccurrences))
		}

		cursor = cursor.AddDate(0, 0, 1)
	}

	return out, nil
}
