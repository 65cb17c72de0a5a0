// Package feed builds the public iCalendar feed of published events.
package feed

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"showcal/internal/model"
)

// Calendar builds an iCalendar feed of the given events. Times are emitted
// as UTC instants; calendar clients localize them.
func Calendar(events []model.Event, prodID string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	for _, ev := range events {
		e := cal.AddEvent(ev.Slug + "@showcal")
		e.SetDtStampTime(time.Now().UTC())
		e.SetStartAt(ev.StartAt.UTC())
		e.SetEndAt(ev.EndAt.UTC())
		e.SetSummary(ev.Title)
		if ev.Description != "" {
			e.SetDescription(ev.Description)
		}
	}
	return cal
}
