package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calendar-bridge/internal/metrics"
	"github.com/klokku/calendar-bridge/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

type Calendar struct {
	service    *gcal.Service
	calendarId string
}

func newGoogleCalendar(service *gcal.Service, calendarId string) *Calendar {
	return &Calendar{
		service:    service,
		calendarId: calendarId,
	}
}

func (c *Calendar) UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]event.Event, error) {
	started := time.Now()
	googleEvents, err := c.service.Events.List(c.calendarId).
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(int64(limit)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	observe("events.list", err, started)
	if err != nil {
		log.Errorf("unable to retrieve events from Google Calendar: %v", err)
		return nil, classifyError("unable to retrieve events", err)
	}

	events := make([]event.Event, 0, len(googleEvents.Items))
	for _, item := range googleEvents.Items {
		events = append(events, googleEventToEvent(item))
	}
	return events, nil
}

func (c *Calendar) InsertEvent(ctx context.Context, e event.NewEvent) (event.CreatedEvent, error) {
	log.Debugf("Adding event: %q, to calendar: %s", e.Summary, c.calendarId)

	started := time.Now()
	result, err := c.service.Events.Insert(c.calendarId, newEventToGoogleEvent(e)).
		Context(ctx).
		Do()
	observe("events.insert", err, started)
	if err != nil {
		log.Errorf("unable to insert event in Google Calendar: %v", err)
		return event.CreatedEvent{}, classifyError("unable to insert event", err)
	}

	return event.CreatedEvent{
		ID:       result.Id,
		HtmlLink: result.HtmlLink,
	}, nil
}

func googleEventToEvent(item *gcal.Event) event.Event {
	e := event.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Location:    item.Location,
		Description: item.Description,
		HtmlLink:    item.HtmlLink,
	}
	if item.Start != nil {
		e.Start = dateTimeOrDate(item.Start)
	}
	if item.End != nil {
		e.End = dateTimeOrDate(item.End)
	}
	return e
}

func dateTimeOrDate(edt *gcal.EventDateTime) string {
	if edt.DateTime != "" {
		return edt.DateTime
	}
	return edt.Date
}

// newEventToGoogleEvent builds the insert payload. Optional fields that were
// not supplied are left out of the request.
func newEventToGoogleEvent(e event.NewEvent) *gcal.Event {
	googleEvent := &gcal.Event{
		Summary:     e.Summary,
		Location:    e.Location,
		Description: e.Description,
		Start: &gcal.EventDateTime{
			DateTime: e.Start,
			TimeZone: e.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: e.End,
			TimeZone: e.TimeZone,
		},
		Recurrence: e.Recurrence,
	}

	for _, a := range e.Attendees {
		googleEvent.Attendees = append(googleEvent.Attendees, &gcal.EventAttendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Optional:    a.Optional,
		})
	}

	if e.Reminders != nil {
		reminders := &gcal.EventReminders{}
		if e.Reminders.UseDefault != nil {
			reminders.UseDefault = *e.Reminders.UseDefault
			reminders.ForceSendFields = []string{"UseDefault"}
		}
		for _, o := range e.Reminders.Overrides {
			reminders.Overrides = append(reminders.Overrides, &gcal.EventReminder{
				Method:  o.Method,
				Minutes: o.Minutes,
			})
		}
		googleEvent.Reminders = reminders
	}

	return googleEvent
}

// classifyError marks errors returned by the Calendar API as upstream errors;
// transport and client failures are wrapped as regular errors.
func classifyError(msg string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &event.UpstreamError{Err: err}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func observe(operation string, err error, started time.Time) {
	var apiErr *googleapi.Error
	result := metrics.ResultSuccess
	switch {
	case errors.As(err, &apiErr):
		result = metrics.ResultAPIError
	case err != nil:
		result = metrics.ResultError
	}
	metrics.ObserveUpstream(operation, result, time.Since(started))
}
