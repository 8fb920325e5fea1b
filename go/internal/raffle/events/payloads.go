// Package events defines the draw lifecycle events derived from session
// transitions. The announcer publishes them to NATS.
package events

import (
	"time"

	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
)

// Lifecycle event types.
const (
	TypeDrawStarted    = "DrawStarted"
	TypeWinnerSnapped  = "WinnerSnapped"
	TypeWinnerSelected = "WinnerSelected"
	TypeRaffleReset    = "RaffleReset"
)

// DrawStartedPayload is the payload for a DrawStarted event
type DrawStartedPayload struct {
	DrawID       string                    `json:"draw_id"`
	Participants []participant.Participant `json:"participants"`
	StartedAt    time.Time                 `json:"started_at"`
	SpinMillis   int64                     `json:"spin_ms"`
}

// WinnerSnappedPayload is the payload for a WinnerSnapped event
type WinnerSnappedPayload struct {
	DrawID    string                  `json:"draw_id"`
	Winner    participant.Participant `json:"winner"`
	SnappedAt time.Time               `json:"snapped_at"`
}

// WinnerSelectedPayload is the payload for a WinnerSelected event
type WinnerSelectedPayload struct {
	DrawID       string                  `json:"draw_id"`
	Winner       participant.Participant `json:"winner"`
	Participants int                     `json:"participants"`
	SelectedAt   time.Time               `json:"selected_at"`
}

// RaffleResetPayload is the payload for a RaffleReset event
type RaffleResetPayload struct {
	// DrawID is the draw that was reset, empty when none had started.
	DrawID    string    `json:"draw_id,omitempty"`
	KeptText  bool      `json:"kept_text"`
	Cancelled bool      `json:"cancelled"`
	ResetAt   time.Time `json:"reset_at"`
}
