package export

import (
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/harborview/calendar-api/internal/models"
)

// ICSExporter serializes occurrences into an iCalendar document. Every
// occurrence becomes its own VEVENT; expanded series members are not
// re-folded into RRULEs.
type ICSExporter struct {
	ProductID string
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//harborview//calendar-api//EN"
	}
	return &ICSExporter{ProductID: productID}
}

// Render produces the serialized VCALENDAR.
func (e *ICSExporter) Render(calendarName string, events []models.Event) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.ProductID)
	cal.SetXWRCalName(calendarName)

	for _, ev := range events {
		uid := ev.SeriesID
		if uid == "" {
			uid = uuid.NewString()
		}
		// One VEVENT per stored occurrence; series members share a
		// series id, so the start keeps UIDs unique.
		vevent := cal.AddEvent(fmt.Sprintf("%s-%s", uid, ev.Start.Format("20060102T150405")))
		vevent.SetDtStampTime(ev.Start)
		vevent.SetSummary(ev.Subject)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		if ev.AllDay {
			vevent.SetAllDayStartAt(ev.Start)
			vevent.SetAllDayEndAt(ev.End)
		} else {
			vevent.SetStartAt(ev.Start)
			vevent.SetEndAt(ev.End)
		}
	}

	return []byte(cal.Serialize()), nil
}
