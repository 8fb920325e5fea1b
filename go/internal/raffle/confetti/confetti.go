// Package confetti generates the decorative particles shown over the winner.
package confetti

import (
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
)

// DefaultCount is the number of pieces in one burst.
const DefaultCount = 150

// Shape of a piece.
type Shape string

const (
	ShapeRect   Shape = "rect"
	ShapeCircle Shape = "circle"
)

// Sampling ranges. Sizes and offsets are in pixels, times in seconds, X in
// percent of the viewport width.
const (
	MinSize     = 5.0
	MaxSize     = 15.0
	MinDuration = 4.0
	MaxDuration = 7.0
	MaxDelay    = 2.0
	MaxX        = 100.0
	MaxRotation = 360.0
)

// Piece is one falling particle.
type Piece struct {
	ID       int     `json:"id"`
	Shape    Shape   `json:"shape"`
	Size     float64 `json:"size"`
	Color    string  `json:"color"`
	X        float64 `json:"x"`
	Top      float64 `json:"top"`
	Duration float64 `json:"duration"`
	Delay    float64 `json:"delay"`
	Rotation float64 `json:"rotation"`
}

// Generate samples n independent pieces. Each piece starts just above the
// top edge, at -Size-10.
func Generate(src random.Source, palette participant.Palette, n int) []Piece {
	if n < 0 {
		n = 0
	}
	if len(palette) == 0 {
		palette = participant.DefaultPalette
	}

	pieces := make([]Piece, n)
	for i := range pieces {
		shape := ShapeRect
		if src.Float64() >= 0.5 {
			shape = ShapeCircle
		}
		size := between(src, MinSize, MaxSize)
		pieces[i] = Piece{
			ID:       i,
			Shape:    shape,
			Size:     size,
			Color:    palette[src.IntN(len(palette))],
			X:        between(src, 0, MaxX),
			Top:      -size - 10,
			Duration: between(src, MinDuration, MaxDuration),
			Delay:    between(src, 0, MaxDelay),
			Rotation: between(src, 0, MaxRotation),
		}
	}
	return pieces
}

func between(src random.Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
