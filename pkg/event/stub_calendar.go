package event

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// StubCalendar is an in-memory Calendar and CalendarProvider for tests.
type StubCalendar struct {
	mu       sync.Mutex
	events   []Event
	inserted []NewEvent
	nextId   int

	// Err, when set, is returned by every call.
	Err error
	// OpenErr, when set, is returned when opening the calendar.
	OpenErr error
}

func NewStubCalendar(events ...Event) *StubCalendar {
	return &StubCalendar{events: events}
}

func (c *StubCalendar) Calendar(_ context.Context) (Calendar, error) {
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	return c, nil
}

func (c *StubCalendar) UpcomingEvents(_ context.Context, from time.Time, limit int) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}

	var upcoming []Event
	for _, e := range c.events {
		if e.Start >= from.Format(time.RFC3339) || e.Start == "" {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Start < upcoming[j].Start
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func (c *StubCalendar) InsertEvent(_ context.Context, event NewEvent) (CreatedEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return CreatedEvent{}, c.Err
	}

	c.nextId++
	id := fmt.Sprintf("stub-%d", c.nextId)
	c.inserted = append(c.inserted, event)
	c.events = append(c.events, Event{
		ID:          id,
		Summary:     event.Summary,
		Start:       event.Start,
		End:         event.End,
		Location:    event.Location,
		Description: event.Description,
		HtmlLink:    "https://calendar.example.com/event?eid=" + id,
	})
	return CreatedEvent{ID: id, HtmlLink: "https://calendar.example.com/event?eid=" + id}, nil
}

// Inserted returns every event passed to InsertEvent.
func (c *StubCalendar) Inserted() []NewEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]NewEvent(nil), c.inserted...)
}
