package dto

// CreateCalendarRequest describes a new calendar.
type CreateCalendarRequest struct {
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone" validate:"required"`
}

// UpdateCalendarRequest renames a calendar and/or changes its timezone.
// Renaming moves the event store intact.
type UpdateCalendarRequest struct {
	Name     *string `json:"name,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}
