package frame

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RequestKind is the outbound frame type discriminator.
type RequestKind string

// KindResponseCreate asks the service to produce one streamed response.
const KindResponseCreate RequestKind = "response.create"

// Inbound event types with special meaning to the client. Everything else is
// relayed as-is.
const (
	EventResponseCreated    = "response.created"
	EventOutputTextDelta    = "response.output_text.delta"
	EventResponseCompleted  = "response.completed"
	EventResponseFailed     = "response.failed"
	EventResponseIncomplete = "response.incomplete"
	EventResponseError      = "response.error"
)

// Event is one decoded inbound frame.
type Event struct {
	Type string
	Data map[string]any
}

// Response returns the embedded wire response object, or nil.
func (e *Event) Response() map[string]any {
	m, _ := e.Data["response"].(map[string]any)
	return m
}

// ServiceError is an application-level error frame: the service rejected or
// aborted the exchange without producing a response.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("service error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("service error: %s", e.Message)
}

// EncodeRequest builds the single outbound frame for a request body. The
// body (including any caller-supplied overrides already merged into it) may
// never change the frame's own discriminator fields: type and stream are
// re-asserted after marshaling.
func EncodeRequest(body map[string]any, kind RequestKind) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request frame: %w", err)
	}
	encoded, err = sjson.SetBytes(encoded, "type", string(kind))
	if err != nil {
		return nil, fmt.Errorf("encode request frame: %w", err)
	}
	encoded, err = sjson.SetBytes(encoded, "stream", true)
	if err != nil {
		return nil, fmt.Errorf("encode request frame: %w", err)
	}
	return encoded, nil
}

// DecodeFrame parses one inbound frame. Binary frames are treated as UTF-8
// text. A frame whose type is the application-level "error" type is raised
// as an error immediately, never returned as data.
func DecodeFrame(data []byte) (*Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode frame: payload is not valid JSON")
	}
	eventType := gjson.GetBytes(data, "type").String()
	if eventType == "" {
		return nil, fmt.Errorf("decode frame: missing event type")
	}
	if eventType == "error" {
		return nil, &ServiceError{
			Code:    gjson.GetBytes(data, "error.code").String(),
			Message: gjson.GetBytes(data, "error.message").String(),
		}
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &Event{Type: eventType, Data: payload}, nil
}

// IsTerminal reports whether an event type ends the exchange. The set is
// fixed; anything else is non-terminal and drives the read loop onward.
func IsTerminal(eventType string) bool {
	switch eventType {
	case EventResponseCompleted, EventResponseFailed, EventResponseIncomplete, EventResponseError:
		return true
	}
	return false
}
