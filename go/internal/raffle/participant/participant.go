package participant

import (
	"errors"
	"fmt"
)

// MinParticipants is the smallest list a draw can start with.
const MinParticipants = 2

// ValidationMessage is shown on the entry view when a draw is refused.
const ValidationMessage = "Please enter at least two participants."

// ErrTooFewParticipants is returned by Build when fewer than MinParticipants names are given.
var ErrTooFewParticipants = errors.New("at least two participants are required")

// Participant is one entrant of a draw.
type Participant struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Palette is the ordered list of brick colors cycled across participants.
type Palette []string

// DefaultPalette holds the classic brick colors.
var DefaultPalette = Palette{
	"#C91A09", // red
	"#0055BF", // blue
	"#F2CD37", // yellow
	"#237841", // green
	"#FE8A18", // orange
	"#81007B", // purple
	"#069D9F", // teal
	"#E4ADC8", // pink
}

// Color returns the palette entry for position i.
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		return DefaultPalette.Color(i)
	}
	return p[i%len(p)]
}

// Build assigns every name its position as ID and a palette color.
func Build(names []string, palette Palette) ([]Participant, error) {
	if len(names) < MinParticipants {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewParticipants, len(names))
	}

	participants := make([]Participant, len(names))
	for i, name := range names {
		participants[i] = Participant{
			ID:    i,
			Name:  name,
			Color: palette.Color(i),
		}
	}
	return participants, nil
}
