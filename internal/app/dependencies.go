package app

import (
	"context"

	"github.com/klokku/calendar-bridge/internal/config"
	"github.com/klokku/calendar-bridge/internal/event_bus"
	"github.com/klokku/calendar-bridge/internal/utils"
	"github.com/klokku/calendar-bridge/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Calendars    event.CalendarProvider
	EventService event.EventService
	EventHandler *event.EventHandler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application, calendars event.CalendarProvider) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.UTCClock
	deps.EventBus = event_bus.NewEventBus()
	subscribeAuditLog(deps.EventBus)

	deps.Calendars = calendars
	deps.EventService = event.NewEventService(deps.Calendars, deps.Clock, deps.EventBus)
	deps.EventHandler = event.NewEventHandler(deps.EventService, deps.Clock)

	return deps
}

func subscribeAuditLog(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventCreatedType, func(ctx context.Context, e event_bus.CalendarEventCreated) error {
		entry := log.WithFields(log.Fields{
			"event_id":  e.ID,
			"start":     e.Start,
			"end":       e.End,
			"time_zone": e.TimeZone,
			"recurring": e.Recurring,
			"attendees": e.Attendees,
		})
		if requestId := RequestId(ctx); requestId != "" {
			entry = entry.WithField("request_id", requestId)
		}
		entry.Info("Calendar event created")
		return nil
	})
}
