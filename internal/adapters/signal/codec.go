package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// Event names on the wire.
const (
	EventJoinSession  = "joinSession"
	EventChatMessage  = "chatMessage"
	EventLeaveSession = "leaveSession"
	EventPing         = "ping"

	EventMessage      = "message"
	EventErrorMessage = "errorMessage"
	EventPong         = "pong"
)

var (
	errBadPayload   = errors.New("bad payload")
	errUnknownEvent = errors.New("unknown event")
	errRateLimited  = errors.New("rate limited")
)

// envelope is the JSON frame exchanged in both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type joinPayload struct {
	Username string `json:"username"`
}

func encode(event string, data any) (core.Frame, error) {
	return json.Marshal(outbound{Type: event, Data: data})
}

// Codec encodes relay messages as "message" events.
type Codec struct{}

func (Codec) Message(msg domain.ChatMessage) (core.Frame, error) {
	return encode(EventMessage, msg)
}

// errorText is the client-facing text of an errorMessage event.
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		return "User not registered"
	case errors.Is(err, domain.ErrNoActiveSession):
		return "No active session found"
	case errors.Is(err, domain.ErrMessageTooLong):
		return "Message too long"
	case errors.Is(err, errBadPayload):
		return "Invalid payload"
	case errors.Is(err, errUnknownEvent):
		return "Unknown event"
	case errors.Is(err, errRateLimited):
		return "Rate limit exceeded"
	}
	return "Internal error"
}
