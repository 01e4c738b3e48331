package event

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klokku/calendar-bridge/internal/rest"
	"github.com/klokku/calendar-bridge/internal/utils"
	log "github.com/sirupsen/logrus"
)

const maxRequestBodySize = 1 << 20

type EventDTO struct {
	Summary  *string `json:"summary"`
	Start    *string `json:"start"`
	Location *string `json:"location"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedEventResponse struct {
	Message  string `json:"message"`
	HtmlLink string `json:"htmlLink"`
	ID       string `json:"id"`
}

type EventHandler struct {
	eventService EventService
	clock        utils.Clock
}

func NewEventHandler(eventService EventService, clock utils.Clock) *EventHandler {
	return &EventHandler{eventService: eventService, clock: clock}
}

func (e *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing upcoming events")

	events, err := e.eventService.Upcoming(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if len(events) == 0 {
		rest.WriteJSON(w, http.StatusOK, MessageResponse{Message: "No upcoming events found."})
		return
	}

	eventsDTO := make([]EventDTO, 0, len(events))
	for _, event := range events {
		eventsDTO = append(eventsDTO, eventToDTO(event))
	}
	rest.WriteJSON(w, http.StatusOK, eventsDTO)
}

// ListEventsICal renders the upcoming events as an iCalendar document. A
// calendar with no renderable events answers 204 No Content.
func (e *EventHandler) ListEventsICal(w http.ResponseWriter, r *http.Request) {
	events, err := e.eventService.Upcoming(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cal := renderCalendar(events, e.clock.Now())
	if len(cal.Children) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := encodeCalendar(&buf, cal); err != nil {
		writeServiceError(w, fmt.Errorf("failed to encode calendar: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("failed to write calendar: %v", err)
	}
}

func (e *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Trace("Creating new event")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		log.Debugf("failed to read request body: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "No event data provided", "")
		return
	}

	newEvent, err := parseNewEvent(body)
	if err != nil {
		var missingErr *MissingFieldsError
		var invalidErr *InvalidRequestError
		switch {
		case errors.Is(err, ErrNoEventData):
			rest.WriteError(w, http.StatusBadRequest, "No event data provided", "")
		case errors.As(err, &missingErr):
			rest.WriteError(w, http.StatusBadRequest,
				"Missing required fields: "+strings.Join(requiredFields, ", "),
				"missing: "+strings.Join(missingErr.Missing, ", "))
		case errors.As(err, &invalidErr):
			rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", invalidErr.Err.Error())
		default:
			writeServiceError(w, err)
		}
		return
	}

	log.Debug("New event request: ", newEvent.Summary)

	created, err := e.eventService.Create(r.Context(), newEvent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, CreatedEventResponse{
		Message:  "Event created",
		HtmlLink: created.HtmlLink,
		ID:       created.ID,
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if IsUpstream(err) {
		log.Errorf("calendar API call failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Google API Error: "+err.Error(), "")
		return
	}
	log.Errorf("unexpected error: %v", err)
	rest.WriteError(w, http.StatusInternalServerError, "Unexpected error: "+err.Error(), "")
}

func eventToDTO(event Event) EventDTO {
	return EventDTO{
		Summary:  optional(event.Summary),
		Start:    optional(event.Start),
		Location: optional(event.Location),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
