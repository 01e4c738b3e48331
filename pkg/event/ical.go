package event

import (
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const productId = "-//klokku//calendar-bridge//EN"

const dateLayout = "2006-01-02"

func renderCalendar(events []Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productId)

	for _, e := range events {
		vevent, ok := toVEvent(e, now)
		if !ok {
			log.Warnf("skipping event without a usable start: %s (%q)", e.ID, e.Start)
			continue
		}
		cal.Children = append(cal.Children, vevent.Component)
	}
	return cal
}

func toVEvent(e Event, now time.Time) (*ical.Event, bool) {
	uid := e.ID
	if uid == "" {
		uid = uuid.NewString()
	}
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	if !setTime(vevent.Props, ical.PropDateTimeStart, e.Start) {
		return nil, false
	}
	setTime(vevent.Props, ical.PropDateTimeEnd, e.End)

	if e.Summary != "" {
		vevent.Props.SetText(ical.PropSummary, e.Summary)
	}
	if e.Location != "" {
		vevent.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.Description != "" {
		vevent.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.HtmlLink != "" {
		vevent.Props.SetText(ical.PropURL, e.HtmlLink)
	}
	return vevent, true
}

// setTime accepts either an RFC3339 timestamp or a plain date (all-day
// events). It reports whether the value could be set.
func setTime(props ical.Props, name string, value string) bool {
	if value == "" {
		return false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		props.SetDateTime(name, t.UTC())
		return true
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		props.SetDate(name, t)
		return true
	}
	return false
}

func encodeCalendar(w io.Writer, cal *ical.Calendar) error {
	return ical.NewEncoder(w).Encode(cal)
}
