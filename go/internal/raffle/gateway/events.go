package gateway

import (
	"encoding/json"
	"time"

	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
)

// RaffleEvent represents the base structure for all events pushed to browsers
type RaffleEvent struct {
	ID        string          `json:"id"`        // Event UUID
	RaffleID  string          `json:"raffle_id"` // Session UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// EventType represents the type of raffle event
type EventType string

const (
	EventTypeStateChanged EventType = "StateChanged"
)

// StateChangedPayload carries the new state and the rendered #app fragment.
type StateChangedPayload struct {
	State session.State `json:"state"`
	HTML  string        `json:"html"`
}
