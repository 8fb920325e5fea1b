package events

import (
	"time"

	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
)

// Lifecycle is one draw lifecycle event derived from a session transition.
type Lifecycle struct {
	Type    string
	DrawID  string
	Payload any
}

// FromTransition maps a transition to its lifecycle event. Text edits,
// highlight moves and refused starts have none.
func FromTransition(tr session.Transition, at time.Time, spin time.Duration) (Lifecycle, bool) {
	prev, next := tr.Prev, tr.Next

	switch ev := tr.Event.(type) {
	case session.StartRequested:
		if next.Phase != session.PhaseRunning {
			return Lifecycle{}, false
		}
		return Lifecycle{
			Type:   TypeDrawStarted,
			DrawID: next.DrawID.String(),
			Payload: DrawStartedPayload{
				DrawID:       next.DrawID.String(),
				Participants: next.Participants,
				StartedAt:    at,
				SpinMillis:   spin.Milliseconds(),
			},
		}, true

	case session.Snapped:
		return Lifecycle{
			Type:   TypeWinnerSnapped,
			DrawID: ev.DrawID.String(),
			Payload: WinnerSnappedPayload{
				DrawID:    ev.DrawID.String(),
				Winner:    next.Participants[ev.Index],
				SnappedAt: at,
			},
		}, true

	case session.Committed:
		if next.Winner == nil {
			return Lifecycle{}, false
		}
		return Lifecycle{
			Type:   TypeWinnerSelected,
			DrawID: ev.DrawID.String(),
			Payload: WinnerSelectedPayload{
				DrawID:       ev.DrawID.String(),
				Winner:       *next.Winner,
				Participants: len(next.Participants),
				SelectedAt:   at,
			},
		}, true

	case session.DrawAgain, session.NewRaffle:
		payload := RaffleResetPayload{
			KeptText:  next.Text != "",
			Cancelled: prev.Phase == session.PhaseRunning,
			ResetAt:   at,
		}
		if prev.Phase != session.PhaseIdle {
			payload.DrawID = prev.DrawID.String()
		}
		return Lifecycle{Type: TypeRaffleReset, DrawID: payload.DrawID, Payload: payload}, true
	}

	return Lifecycle{}, false
}
