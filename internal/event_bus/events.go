package event_bus

const CalendarEventCreatedType EventType = "calendar.event.created"

// CalendarEventCreated is published after the remote calendar accepted a new
// event.
type CalendarEventCreated struct {
	ID        string
	Summary   string
	Start     string
	End       string
	TimeZone  string
	HtmlLink  string
	Recurring bool
	Attendees int
}
