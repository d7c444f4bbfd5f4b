package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/harborview/calendar-api/internal/models"
)

// EventRepository is the in-memory occurrence store for one calendar.
// Occurrences are keyed by (subject, start, end); there is no synthetic id.
// Every read returns independent copies, so callers can never mutate stored
// state through a returned value.
type EventRepository struct {
	mu     sync.RWMutex
	events map[models.EventKey]models.Event
}

// NewEventRepository constructs an empty store.
func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[models.EventKey]models.Event)}
}

// Insert stores a copy of the occurrence. Inserting an existing key
// replaces the stored value.
func (r *EventRepository) Insert(ev models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.Key()] = ev.Clone()
}

// Delete removes the occurrence with the exact key. It reports whether an
// occurrence was removed.
func (r *EventRepository) Delete(key models.EventKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[key]; !ok {
		return false
	}
	delete(r.events, key)
	return true
}

// Update replaces the occurrence stored under ev's key. It reports whether
// the key existed.
func (r *EventRepository) Update(ev models.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ev.Key()
	if _, ok := r.events[key]; !ok {
		return false
	}
	r.events[key] = ev.Clone()
	return true
}

// Get returns a copy of the occurrence with the exact key.
func (r *EventRepository) Get(key models.EventKey) (models.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[key]
	if !ok {
		return models.Event{}, false
	}
	return ev.Clone(), true
}

// OnDate returns occurrences whose closed [start,end] interval intersects
// the given calendar day, in chronological order.
func (r *EventRepository) OnDate(day time.Time) []models.Event {
	return r.collect(func(ev models.Event) bool {
		return ev.CoversDate(day)
	})
}

// InRange returns occurrences whose closed interval intersects [from, to],
// in chronological order.
func (r *EventRepository) InRange(from, to time.Time) []models.Event {
	return r.collect(func(ev models.Event) bool {
		return !ev.Start.After(to) && !ev.End.Before(from)
	})
}

// BySubject returns every occurrence with the given subject. Matching is
// purely by name: stray events sharing a subject with a series are included.
func (r *EventRepository) BySubject(subject string) []models.Event {
	return r.collect(func(ev models.Event) bool {
		return ev.Subject == subject
	})
}

// StartingFrom returns occurrences with the given subject starting at or
// after the threshold.
func (r *EventRepository) StartingFrom(subject string, from time.Time) []models.Event {
	return r.collect(func(ev models.Event) bool {
		return ev.Subject == subject && !ev.Start.Before(from)
	})
}

// All returns every stored occurrence in chronological order.
func (r *EventRepository) All() []models.Event {
	return r.collect(func(models.Event) bool { return true })
}

// Len returns the number of stored occurrences.
func (r *EventRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Apply removes and inserts occurrences as one atomic swap. The edit engine
// computes the full replacement set up front, so Apply is the only mutation
// a mutating request performs.
func (r *EventRepository) Apply(remove []models.EventKey, insert []models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range remove {
		delete(r.events, key)
	}
	for _, ev := range insert {
		r.events[ev.Key()] = ev.Clone()
	}
}

func (r *EventRepository) collect(match func(models.Event) bool) []models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Event, 0)
	for _, ev := range r.events {
		if match(ev) {
			out = append(out, ev.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		if !out[i].End.Equal(out[j].End) {
			return out[i].End.Before(out[j].End)
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}
