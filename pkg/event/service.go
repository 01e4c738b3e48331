package event

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/calendar-bridge/internal/event_bus"
	"github.com/klokku/calendar-bridge/internal/utils"
	log "github.com/sirupsen/logrus"
)

// CallTimeout bounds every call made to the remote calendar.
const CallTimeout = 10 * time.Second

type EventService interface {
	Upcoming(ctx context.Context) ([]Event, error)
	Create(ctx context.Context, event NewEvent) (CreatedEvent, error)
}

type EventServiceImpl struct {
	calendars CalendarProvider
	clock     utils.Clock
	bus       *event_bus.EventBus
}

func NewEventService(calendars CalendarProvider, clock utils.Clock, bus *event_bus.EventBus) *EventServiceImpl {
	return &EventServiceImpl{
		calendars: calendars,
		clock:     clock,
		bus:       bus,
	}
}

// Upcoming returns at most UpcomingLimit events starting from now, ordered by
// start time.
func (s *EventServiceImpl) Upcoming(ctx context.Context) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	calendar, err := s.calendars.Calendar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}
	events, err := calendar.UpcomingEvents(ctx, s.clock.Now(), UpcomingLimit)
	if err != nil {
		return nil, err
	}
	log.Debugf("Fetched %d upcoming events", len(events))
	return events, nil
}

func (s *EventServiceImpl) Create(ctx context.Context, event NewEvent) (CreatedEvent, error) {
	if event.TimeZone == "" {
		event.TimeZone = DefaultTimeZone
	}

	created, err := s.insert(ctx, event)
	if err != nil {
		return CreatedEvent{}, err
	}
	log.Debugf("Created event %s (%s)", created.ID, event.Summary)

	if s.bus != nil {
		err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarEventCreatedType, event_bus.CalendarEventCreated{
			ID:        created.ID,
			Summary:   event.Summary,
			Start:     event.Start,
			End:       event.End,
			TimeZone:  event.TimeZone,
			HtmlLink:  created.HtmlLink,
			Recurring: len(event.Recurrence) > 0,
			Attendees: len(event.Attendees),
		}))
		if err != nil {
			log.Warnf("failed to publish event created notification: %v", err)
		}
	}

	return created, nil
}

func (s *EventServiceImpl) insert(ctx context.Context, event NewEvent) (CreatedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	calendar, err := s.calendars.Calendar(ctx)
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("failed to open calendar: %w", err)
	}
	return calendar.InsertEvent(ctx, event)
}
