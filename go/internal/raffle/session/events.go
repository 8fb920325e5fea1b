package session

import (
	"github.com/google/uuid"

	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
)

// Event is an input to the session state machine.
type Event interface {
	// apply returns the next state and whether anything changed.
	apply(s State) (State, bool)
}

// Reduce applies ev to s. It is pure: s is not modified.
func Reduce(s State, ev Event) State {
	next, _ := ev.apply(s)
	return next
}

// TextChanged replaces the raw participant text. The text can only be edited
// while Idle.
type TextChanged struct {
	Text string
}

func (e TextChanged) apply(s State) (State, bool) {
	if s.Phase != PhaseIdle || s.Text == e.Text {
		return s, false
	}
	s.Text = e.Text
	return s, true
}

// StartRequested asks for a draw over the names in the current text. It only
// applies while Idle. With fewer than two names the state stays Idle and
// carries the validation message.
type StartRequested struct {
	DrawID  uuid.UUID
	Palette participant.Palette
}

func (e StartRequested) apply(s State) (State, bool) {
	if s.Phase != PhaseIdle {
		return s, false
	}

	participants, err := participant.Build(s.Names(), e.Palette)
	if err != nil {
		if s.Error == participant.ValidationMessage {
			return s, false
		}
		s.Error = participant.ValidationMessage
		return s, true
	}

	s.Phase = PhaseRunning
	s.DrawID = e.DrawID
	s.Participants = participants
	s.Highlighted = 0
	s.Winner = nil
	s.Error = ""
	return s, true
}

// Highlighted moves the spin highlight of draw DrawID to Index.
type Highlighted struct {
	DrawID uuid.UUID
	Index  int
}

func (e Highlighted) apply(s State) (State, bool) {
	if !s.current(e.DrawID) || !s.validIndex(e.Index) || s.Highlighted == e.Index {
		return s, false
	}
	s.Highlighted = e.Index
	return s, true
}

// Snapped jumps the highlight of draw DrawID to the drawn winner Index.
type Snapped struct {
	DrawID uuid.UUID
	Index  int
}

func (e Snapped) apply(s State) (State, bool) {
	if !s.current(e.DrawID) || !s.validIndex(e.Index) {
		return s, false
	}
	s.Highlighted = e.Index
	return s, true
}

// Committed finishes draw DrawID with the participant at Index as winner.
type Committed struct {
	DrawID uuid.UUID
	Index  int
}

func (e Committed) apply(s State) (State, bool) {
	if !s.current(e.DrawID) || !s.validIndex(e.Index) {
		return s, false
	}
	winner := s.Participants[e.Index]
	s.Phase = PhaseFinished
	s.Highlighted = e.Index
	s.Winner = &winner
	return s, true
}

// DrawAgain returns to Idle and keeps the text for another draw.
type DrawAgain struct{}

func (DrawAgain) apply(s State) (State, bool) {
	if s.Phase == PhaseIdle && s.Error == "" {
		return s, false
	}
	return s.idle(), true
}

// NewRaffle returns to Idle and clears the text.
type NewRaffle struct{}

func (NewRaffle) apply(s State) (State, bool) {
	next := s.idle()
	next.Text = ""
	if s.Phase == PhaseIdle && s.Text == "" && s.Error == "" {
		return s, false
	}
	return next, true
}
