package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/calendar-api/internal/models"
)

func TestOverlapsIsHalfOpen(t *testing.T) {
	svc := NewConflictService()
	nine := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	ten := nine.Add(time.Hour)
	eleven := ten.Add(time.Hour)

	assert.True(t, svc.Overlaps(nine, eleven, ten, eleven))
	assert.True(t, svc.Overlaps(nine, ten, nine, ten))
	// Abutting intervals never conflict.
	assert.False(t, svc.Overlaps(nine, ten, ten, eleven))
	assert.False(t, svc.Overlaps(ten, eleven, nine, ten))
	// Disjoint.
	assert.False(t, svc.Overlaps(nine, ten, eleven, eleven.Add(time.Hour)))
}

func TestOverlapsIsSymmetric(t *testing.T) {
	svc := NewConflictService()
	aS := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	aE := aS.Add(2 * time.Hour)
	bS := aS.Add(time.Hour)
	bE := bS.Add(2 * time.Hour)

	assert.Equal(t, svc.Overlaps(aS, aE, bS, bE), svc.Overlaps(bS, bE, aS, aE))
}

func TestBusyAtUsesClosedBounds(t *testing.T) {
	svc := NewConflictService()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	events := []models.Event{{Subject: "Meeting", Start: start, End: end}}

	assert.True(t, svc.BusyAt(start, events))
	assert.True(t, svc.BusyAt(start.Add(30*time.Minute), events))
	// The exact end boundary still counts as busy.
	assert.True(t, svc.BusyAt(end, events))
	assert.False(t, svc.BusyAt(start.Add(-time.Second), events))
	assert.False(t, svc.BusyAt(end.Add(time.Second), events))
	assert.False(t, svc.BusyAt(start, nil))
}

func TestFirstConflictSkipsExcludedKeys(t *testing.T) {
	svc := NewConflictService()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	stored := models.Event{Subject: "Old", Start: start, End: start.Add(time.Hour)}
	candidate := models.Event{Subject: "New", Start: start.Add(30 * time.Minute), End: start.Add(90 * time.Minute)}

	hit := svc.FirstConflict([]models.Event{candidate}, []models.Event{stored}, nil)
	require.NotNil(t, hit)
	assert.Equal(t, "Old", hit.Subject)

	exclude := map[models.EventKey]struct{}{stored.Key(): {}}
	assert.Nil(t, svc.FirstConflict([]models.Event{candidate}, []models.Event{stored}, exclude))
}

func TestFirstConflictNilOnCleanStore(t *testing.T) {
	svc := NewConflictService()
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	stored := models.Event{Subject: "Morning", Start: start, End: start.Add(time.Hour)}
	candidate := models.Event{Subject: "Afternoon", Start: start.Add(5 * time.Hour), End: start.Add(6 * time.Hour)}

	assert.Nil(t, svc.FirstConflict([]models.Event{candidate}, []models.Event{stored}, nil))
	assert.Nil(t, svc.FirstConflict(nil, []models.Event{stored}, nil))
}
