package event

import (
	"context"
	"time"
)

const DefaultTimeZone = "UTC"

// UpcomingLimit is the maximum number of events returned by a listing.
const UpcomingLimit = 10

// Event is the projection of a remote calendar event used by this service.
// Start and End hold the remote dateTime, or the date for all-day events.
type Event struct {
	ID          string
	Summary     string
	Start       string
	End         string
	Location    string
	Description string
	HtmlLink    string
}

type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
}

type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int64  `json:"minutes"`
}

// Reminders carries the reminder settings as sent by the client. UseDefault
// is nil when the client did not set it.
type Reminders struct {
	UseDefault *bool              `json:"useDefault,omitempty"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

// NewEvent is an event about to be submitted. Start and End are passed to the
// remote calendar as given.
type NewEvent struct {
	Summary     string
	Start       string
	End         string
	TimeZone    string
	Location    string
	Description string
	Recurrence  []string
	Attendees   []Attendee
	Reminders   *Reminders
}

type CreatedEvent struct {
	ID       string
	HtmlLink string
}

// Calendar is a single authenticated session against the remote calendar.
type Calendar interface {
	UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]Event, error)
	InsertEvent(ctx context.Context, event NewEvent) (CreatedEvent, error)
}

// CalendarProvider opens a Calendar for the duration of one request.
type CalendarProvider interface {
	Calendar(ctx context.Context) (Calendar, error)
}
