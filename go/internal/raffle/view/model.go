// Package view turns the session state into what the front ends show.
//
// Build is a pure function from state to one of three view models. Renderer
// renders those models to HTML for the browser front end; the terminal front
// end draws the same models with tcell.
package view

import (
	"github.com/mcdev12/legoraffle/go/internal/raffle/confetti"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
)

// Kind names the view to show.
type Kind string

const (
	KindEntry     Kind = "entry"
	KindShuffling Kind = "shuffling"
	KindWinner    Kind = "winner"
)

// Fixed copy.
const (
	DefaultTitle     = "LEGO RAFFLE"
	Subtitle         = "Enter names, one per line"
	Placeholder      = "Alice\nBob\nCharlie..."
	ShufflingHeading = "Picking a winner..."
	WinnerHeading    = "The winner is..."
	StartLabel       = "DRAW WINNER!"
	AgainLabel       = "Draw Again"
	NewLabel         = "New Raffle"
)

// Brick is a participant as drawn on screen.
type Brick struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Highlighted bool   `json:"highlighted"`
}

// Model is everything one view needs. Fields irrelevant to Kind are zero.
type Model struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`

	// Entry.
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
	Count    int    `json:"count"`
	CanStart bool   `json:"can_start"`

	// Shuffling.
	Bricks []Brick `json:"bricks,omitempty"`

	// Winner.
	Winner   *Brick           `json:"winner,omitempty"`
	Confetti []confetti.Piece `json:"confetti,omitempty"`
}

// Heading returns the view's main heading.
func (m Model) Heading() string {
	switch m.Kind {
	case KindShuffling:
		return ShufflingHeading
	case KindWinner:
		return WinnerHeading
	default:
		return m.Title
	}
}

// Build maps st to its view model. pieces is only used for the winner view;
// callers generate a fresh batch each time that view is mounted.
func Build(st session.State, pieces []confetti.Piece) Model {
	m := Model{Title: DefaultTitle}

	switch st.Phase {
	case session.PhaseRunning:
		m.Kind = KindShuffling
		m.Bricks = make([]Brick, len(st.Participants))
		for i, p := range st.Participants {
			m.Bricks[i] = brick(p, i == st.Highlighted)
		}

	case session.PhaseFinished:
		m.Kind = KindWinner
		if st.Winner != nil {
			w := brick(*st.Winner, true)
			m.Winner = &w
		}
		m.Confetti = pieces

	default:
		names := st.Names()
		m.Kind = KindEntry
		m.Text = st.Text
		m.Error = st.Error
		m.Count = len(names)
		m.CanStart = len(names) >= participant.MinParticipants
	}

	return m
}

func brick(p participant.Participant, highlighted bool) Brick {
	return Brick{
		ID:          p.ID,
		Name:        p.Name,
		Color:       p.Color,
		Highlighted: highlighted,
	}
}
