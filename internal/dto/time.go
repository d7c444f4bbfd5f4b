package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Accepted wire formats for naive local date-times. No zone suffix: the
// engine does not do instant arithmetic, calendar timezone is metadata.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LocalDateTime is a naive local date-time JSON value.
type LocalDateTime struct {
	time.Time
}

// ParseLocalDateTime parses any of the accepted layouts.
func ParseLocalDateTime(raw string) (LocalDateTime, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return LocalDateTime{Time: t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid date-time %q, expected YYYY-MM-DD[THH:MM[:SS]]", raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseLocalDateTime(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Format("2006-01-02T15:04:05"))
}

// TimePtr returns the wrapped time, or nil for a nil receiver.
func (l *LocalDateTime) TimePtr() *time.Time {
	if l == nil {
		return nil
	}
	t := l.Time
	return &t
}
