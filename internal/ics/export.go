// Package ics renders the event calendar as an iCalendar document.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"herald/internal/store"
	"herald/internal/timeofday"
)

// DefaultEventLength pads DTEND for events that only declare a start time.
const DefaultEventLength = 90 * time.Minute

// Export builds an iCalendar document for the given events. Events whose
// time cannot be parsed become all-day entries.
func Export(events []store.Event, loc *time.Location, now time.Time) []byte {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//herald//community calendar//EN")

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID + "@herald")
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if !ev.CreatedAt.IsZero() {
			ve.SetCreatedTime(ev.CreatedAt)
		}

		if tod, ok := timeofday.Parse(ev.Time); ok {
			start := ev.Date.At(tod.Hour, tod.Minute, loc)
			ve.SetStartAt(start)
			ve.SetEndAt(start.Add(DefaultEventLength))
		} else {
			ve.SetAllDayStartAt(ev.Date.At(0, 0, loc))
		}
	}
	return []byte(cal.Serialize())
}
