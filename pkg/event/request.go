package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var requiredFields = []string{"summary", "start", "end"}

type MissingFieldsError struct {
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

type InvalidRequestError struct {
	Err error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Err)
}

func (e *InvalidRequestError) Unwrap() error {
	return e.Err
}

type CreateEventRequest struct {
	Summary     *string    `json:"summary"`
	Start       *string    `json:"start"`
	End         *string    `json:"end"`
	TimeZone    string     `json:"timeZone"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Recurrence  []string   `json:"recurrence"`
	Attendees   []Attendee `json:"attendees"`
	Reminders   *Reminders `json:"reminders"`
}

// parseNewEvent decodes a create request body. An empty, malformed or empty
// object body yields ErrNoEventData. Required fields set to null count as
// missing.
func parseNewEvent(body []byte) (NewEvent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return NewEvent{}, ErrNoEventData
	}

	var missing []string
	for _, name := range requiredFields {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return NewEvent{}, &MissingFieldsError{Missing: missing}
	}

	var req CreateEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return NewEvent{}, &InvalidRequestError{Err: err}
	}

	return NewEvent{
		Summary:     *req.Summary,
		Start:       *req.Start,
		End:         *req.End,
		TimeZone:    req.TimeZone,
		Location:    req.Location,
		Description: req.Description,
		Recurrence:  req.Recurrence,
		Attendees:   req.Attendees,
		Reminders:   req.Reminders,
	}, nil
}
