package engine

import "time"

// Timing parameters of a draw.
type Timing struct {
	// Base is the delay between advances at the very start of the spin.
	Base time.Duration
	// Growth is added to Base, scaled by the squared elapsed fraction.
	Growth time.Duration
	// Total is how long the spin runs before the winner is drawn.
	Total time.Duration
	// Pause is how long the snapped winner is shown before it is committed.
	Pause time.Duration
}

// DefaultTiming returns the stock 5 second draw.
func DefaultTiming() Timing {
	return Timing{
		Base:   75 * time.Millisecond,
		Growth: 500 * time.Millisecond,
		Total:  5000 * time.Millisecond,
		Pause:  1000 * time.Millisecond,
	}
}

// Normalize replaces non-positive fields with their defaults. Growth may be zero.
func (t Timing) Normalize() Timing {
	def := DefaultTiming()
	if t.Base <= 0 {
		t.Base = def.Base
	}
	if t.Growth < 0 {
		t.Growth = def.Growth
	}
	if t.Total <= 0 {
		t.Total = def.Total
	}
	if t.Pause <= 0 {
		t.Pause = def.Pause
	}
	return t
}

// Delay is the spin's deceleration policy: Base + (elapsed/Total)^2 * Growth.
func (t Timing) Delay(elapsed time.Duration) time.Duration {
	if elapsed < 0 {
		elapsed = 0
	}
	progress := float64(elapsed) / float64(t.Total)
	return t.Base + time.Duration(progress*progress*float64(t.Growth))
}
