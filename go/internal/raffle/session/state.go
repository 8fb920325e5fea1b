package session

import (
	"github.com/google/uuid"

	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
)

// Phase is the raffle's position in its Idle -> Running -> Finished cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseFinished Phase = "finished"
)

// NoHighlight marks that no participant is highlighted.
const NoHighlight = -1

// State is the whole raffle session. Values are treated as immutable: every
// transition produces a new State and the Participants slice is never
// modified after a draw starts.
type State struct {
	Text         string                    `json:"text"`
	Phase        Phase                     `json:"phase"`
	DrawID       uuid.UUID                 `json:"draw_id"`
	Participants []participant.Participant `json:"participants"`
	Highlighted  int                       `json:"highlighted"`
	Winner       *participant.Participant  `json:"winner,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// Initial returns the empty Idle state.
func Initial() State {
	return State{
		Phase:        PhaseIdle,
		Participants: []participant.Participant{},
		Highlighted:  NoHighlight,
	}
}

// Names returns the participant names parsed from the current text.
func (s State) Names() []string {
	return participant.Parse(s.Text)
}

// CanStart reports whether a draw could start from this state.
func (s State) CanStart() bool {
	return s.Phase == PhaseIdle && len(s.Names()) >= participant.MinParticipants
}

func (s State) validIndex(i int) bool {
	return i >= 0 && i < len(s.Participants)
}

// current reports whether an engine event for drawID still applies.
func (s State) current(drawID uuid.UUID) bool {
	return s.Phase == PhaseRunning && drawID != uuid.Nil && s.DrawID == drawID
}

// idle returns s reset to Idle, keeping the raw text.
func (s State) idle() State {
	next := Initial()
	next.Text = s.Text
	return next
}
