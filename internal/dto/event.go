package dto

// RecurrenceDraft is the raw, unvalidated recurrence input. Weekday tokens
// accept full names, three-letter abbreviations or M T W R F S U letters.
type RecurrenceDraft struct {
	RepeatDays []string       `json:"repeat_days"`
	Count      *int           `json:"count,omitempty"`
	Until      *LocalDateTime `json:"until,omitempty"`
}

// EventDraft is a partially-specified event. Every field except the subject
// is optional; the validator is the sole producer of the canonical form.
// Omitting end makes the event all-day on start's date.
type EventDraft struct {
	Subject     string           `json:"subject" validate:"required"`
	Start       *LocalDateTime   `json:"start,omitempty"`
	End         *LocalDateTime   `json:"end,omitempty"`
	Description *string          `json:"description,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Public      *bool            `json:"public,omitempty"`
	AllDay      *bool            `json:"all_day,omitempty"`
	Recurring   *bool            `json:"recurring,omitempty"`
	Recurrence  *RecurrenceDraft `json:"recurrence,omitempty"`
}

// EventPatch overlays non-nil fields onto an existing occurrence before
// re-normalization. Changing start or end re-derives the all-day state;
// omitting both preserves it.
type EventPatch struct {
	Subject     *string          `json:"subject,omitempty"`
	Start       *LocalDateTime   `json:"start,omitempty"`
	End         *LocalDateTime   `json:"end,omitempty"`
	Description *string          `json:"description,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Public      *bool            `json:"public,omitempty"`
	AllDay      *bool            `json:"all_day,omitempty"`
	Recurring   *bool            `json:"recurring,omitempty"`
	Recurrence  *RecurrenceDraft `json:"recurrence,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p EventPatch) IsZero() bool {
	return p.Subject == nil && p.Start == nil && p.End == nil &&
		p.Description == nil && p.Location == nil && p.Public == nil &&
		p.AllDay == nil && p.Recurring == nil && p.Recurrence == nil
}

// EditEventRequest targets one stored occurrence by its exact key.
type EditEventRequest struct {
	Subject string         `json:"subject" validate:"required"`
	Start   *LocalDateTime `json:"start" validate:"required"`
	End     *LocalDateTime `json:"end" validate:"required"`
	Patch   EventPatch     `json:"patch"`
}

// EditSeriesRequest targets every occurrence sharing a subject, optionally
// restricted to those starting at or after From.
type EditSeriesRequest struct {
	Subject string         `json:"subject" validate:"required"`
	From    *LocalDateTime `json:"from,omitempty"`
	Patch   EventPatch     `json:"patch"`
}

// MutationResult reports how many edit targets a mutation touched.
type MutationResult struct {
	Occurrences int `json:"occurrences"`
}
