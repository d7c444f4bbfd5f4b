package service

import (
	"time"

	"github.com/harborview/calendar-api/internal/models"
)

// ConflictService holds the two interval predicates of the engine. They
// differ on purpose: overlap is half-open so abutting events coexist, busy
// is closed so an event's exact boundaries count as busy.
type ConflictService struct{}

// NewConflictService constructs the detector.
func NewConflictService() *ConflictService {
	return &ConflictService{}
}

// Overlaps reports strict interval overlap: events that merely touch at a
// boundary do not conflict.
func (ConflictService) Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// BusyAt reports whether any event's closed [start,end] interval contains
// the instant.
func (ConflictService) BusyAt(at time.Time, against []models.Event) bool {
	for _, ev := range against {
		if !ev.Start.After(at) && !ev.End.Before(at) {
			return true
		}
	}
	return false
}

// FirstConflict returns the first stored event any candidate overlaps,
// skipping stored events whose keys are excluded (the occurrences an edit
// is replacing). Candidates generated by one expansion never overlap each
// other, so only candidate-versus-store pairs are checked.
func (s ConflictService) FirstConflict(candidates, against []models.Event, exclude map[models.EventKey]struct{}) *models.Event {
	for _, other := range against {
		if exclude != nil {
			if _, skip := exclude[other.Key()]; skip {
				continue
			}
		}
		for _, cand := range candidates {
			if s.Overlaps(cand.Start, cand.End, other.Start, other.End) {
				hit := other.Clone()
				return &hit
			}
		}
	}
	return nil
}
