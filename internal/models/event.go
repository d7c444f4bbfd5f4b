package models

import (
	"strings"
	"time"
)

// Weekday names in Monday-first order. Recurrence arithmetic indexes into
// this cycle, so the order is load-bearing.
var weekdayNames = [7]string{
	"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY",
}

// Single-letter weekday tokens as used by the compact CSV form. R is
// Thursday, U is Sunday.
var weekdayLetters = map[string]int{
	"M": 0, "T": 1, "W": 2, "R": 3, "F": 4, "S": 5, "U": 6,
}

// ParseWeekday resolves a weekday token to its canonical full name. It
// accepts full names, three-letter abbreviations and the single letters
// M T W R F S U, case-insensitively.
func ParseWeekday(token string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return "", false
	}
	if idx, ok := weekdayLetters[t]; ok && len(t) == 1 {
		return weekdayNames[idx], true
	}
	for _, name := range weekdayNames {
		if t == name || (len(t) == 3 && t == name[:3]) {
			return name, true
		}
	}
	return "", false
}

// WeekdayIndex returns the Monday-first index of a canonical weekday name.
func WeekdayIndex(name string) (int, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// MondayIndex converts a time.Weekday (Sunday-first) into the Monday-first
// cycle used by recurrence rules.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// RecurrenceRule describes how a series repeats. RepeatDays holds canonical
// weekday names; exactly one of Count or Until is set.
type RecurrenceRule struct {
	RepeatDays []string   `json:"repeat_days"`
	Count      *int       `json:"count,omitempty"`
	Until      *time.Time `json:"until,omitempty"`
}

// Clone returns an independent copy of the rule.
func (r *RecurrenceRule) Clone() *RecurrenceRule {
	if r == nil {
		return nil
	}
	clone := RecurrenceRule{RepeatDays: append([]string(nil), r.RepeatDays...)}
	if r.Count != nil {
		c := *r.Count
		clone.Count = &c
	}
	if r.Until != nil {
		u := *r.Until
		clone.Until = &u
	}
	return &clone
}

// RuleEqual reports whether two rules describe the same repetition. Day
// order is significant only after normalization, which sorts Monday-first.
func RuleEqual(a, b *RecurrenceRule) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.RepeatDays) != len(b.RepeatDays) {
		return false
	}
	for i := range a.RepeatDays {
		if a.RepeatDays[i] != b.RepeatDays[i] {
			return false
		}
	}
	if (a.Count == nil) != (b.Count == nil) || (a.Until == nil) != (b.Until == nil) {
		return false
	}
	if a.Count != nil && *a.Count != *b.Count {
		return false
	}
	if a.Until != nil && !a.Until.Equal(*b.Until) {
		return false
	}
	return true
}

// EventKey identifies one stored occurrence. There is no synthetic id; the
// subject plus the exact interval is the key.
type EventKey struct {
	Subject string
	Start   time.Time
	End     time.Time
}

// Event is one concrete occurrence. A recurring series is stored as N
// independent occurrences sharing a subject, a rule copy and a series id.
type Event struct {
	Subject     string          `json:"subject"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Public      bool            `json:"public"`
	AllDay      bool            `json:"all_day"`
	Recurring   bool            `json:"recurring"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
	SeriesID    string          `json:"series_id,omitempty"`
}

// Key returns the occurrence's store key.
func (e Event) Key() EventKey {
	return EventKey{Subject: e.Subject, Start: e.Start, End: e.End}
}

// Clone returns a deep copy, detaching the recurrence rule pointer.
func (e Event) Clone() Event {
	clone := e
	clone.Recurrence = e.Recurrence.Clone()
	return clone
}

// DateOf truncates a naive local date-time to its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CoversDate reports whether the closed interval [start,end] intersects the
// given calendar day.
func (e Event) CoversDate(day time.Time) bool {
	d := DateOf(day)
	return !DateOf(e.Start).After(d) && !DateOf(e.End).Before(d)
}
