package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

type calendarEntry struct {
	calendar models.Calendar
	events   *EventRepository

	// editMu serializes one edit-engine operation on this calendar's
	// store: the conflict check and the commit must observe the same
	// snapshot.
	editMu sync.Mutex
}

// CalendarRepository is the registry of named calendars, each owning one
// event store.
type CalendarRepository struct {
	mu      sync.RWMutex
	entries map[string]*calendarEntry
}

// NewCalendarRepository constructs an empty registry.
func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{entries: make(map[string]*calendarEntry)}
}

// Create registers a calendar. Names are unique.
func (r *CalendarRepository) Create(cal models.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[cal.Name]; ok {
		return appErrors.Clone(appErrors.ErrConflict, "calendar already exists: "+cal.Name)
	}
	now := time.Now()
	if cal.CreatedAt.IsZero() {
		cal.CreatedAt = now
	}
	cal.UpdatedAt = now
	r.entries[cal.Name] = &calendarEntry{calendar: cal, events: NewEventRepository()}
	return nil
}

// Get returns a copy of the calendar metadata.
func (r *CalendarRepository) Get(name string) (models.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return models.Calendar{}, appErrors.Clone(appErrors.ErrNotFound, "unknown calendar: "+name)
	}
	return entry.calendar, nil
}

// List returns all calendars sorted by name.
func (r *CalendarRepository) List() []models.Calendar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Calendar, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.calendar)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Update applies new metadata under the old name. A rename moves the event
// store intact; the new name must be free.
func (r *CalendarRepository) Update(name string, cal models.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[name]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown calendar: "+name)
	}
	if cal.Name != name {
		if _, taken := r.entries[cal.Name]; taken {
			return appErrors.Clone(appErrors.ErrConflict, "calendar already exists: "+cal.Name)
		}
		delete(r.entries, name)
		r.entries[cal.Name] = entry
	}
	cal.CreatedAt = entry.calendar.CreatedAt
	cal.UpdatedAt = time.Now()
	entry.calendar = cal
	return nil
}

// Delete removes a calendar and its events.
func (r *CalendarRepository) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown calendar: "+name)
	}
	delete(r.entries, name)
	return nil
}

// Events returns the event store of the named calendar for read access.
func (r *CalendarRepository) Events(name string) (*EventRepository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown calendar: "+name)
	}
	return entry.events, nil
}

// WithEdit runs fn holding the calendar's edit lock. Mutating operations go
// through here so that conflict checks and commits see a consistent store.
// Operations on different calendars never block each other.
func (r *CalendarRepository) WithEdit(name string, fn func(events *EventRepository) error) error {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown calendar: "+name)
	}
	entry.editMu.Lock()
	defer entry.editMu.Unlock()
	return fn(entry.events)
}
