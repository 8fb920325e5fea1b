// Package engine runs the timed part of a draw: a decelerating round-robin
// spin across the participants, followed by an independent uniform draw of
// the winner, a snap of the highlight onto it and, after a pause, the commit.
//
// The spin is purely cosmetic. The winner comes from a single call to Draw
// and does not depend on where the spin stopped.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
)

// ErrEmptyDraw is returned when a draw is run without participants.
var ErrEmptyDraw = errors.New("draw needs at least one participant")

// Observer receives a draw's progress. Methods are called sequentially from
// the engine goroutine and never after the run's context is cancelled.
type Observer interface {
	// Highlight reports a round-robin advance to index.
	Highlight(index int)
	// Snap reports the drawn winner index, shown before the commit.
	Snap(index int)
	// Commit reports the final winner index.
	Commit(index int)
}

// Engine drives draws on a clock with an injected random source.
type Engine struct {
	clock  clockwork.Clock
	rng    random.Source
	timing Timing
}

// New creates an engine. A nil clock means the real clock and a nil source
// means the global math/rand/v2 generator.
func New(clock clockwork.Clock, rng random.Source, timing Timing) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rng == nil {
		rng = random.Global{}
	}
	return &Engine{
		clock:  clock,
		rng:    rng,
		timing: timing.Normalize(),
	}
}

// Timing returns the normalized timing the engine runs with.
func (e *Engine) Timing() Timing {
	return e.timing
}

// Draw picks a winner index uniformly over [0, n).
func Draw(rng random.Source, n int) int {
	return rng.IntN(n)
}

// Run performs one draw over n participants with the highlight starting at
// index 0. It blocks until the winner is committed and returns its index, or
// returns ctx.Err() if the context is cancelled first.
func (e *Engine) Run(ctx context.Context, n int, obs Observer) (int, error) {
	if n < 1 {
		return 0, ErrEmptyDraw
	}

	highlighted := 0
	spin := Spin{
		Clock:    e.clock,
		Duration: e.timing.Total,
		Policy:   e.timing.Delay,
		Tick: func(_ time.Duration) {
			highlighted = (highlighted + 1) % n
			obs.Highlight(highlighted)
		},
	}
	if err := spin.Run(ctx); err != nil {
		log.Debug().Err(err).Int("highlighted", highlighted).Msg("draw cancelled during spin")
		return 0, err
	}

	winner := Draw(e.rng, n)
	obs.Snap(winner)
	log.Debug().Int("winner_index", winner).Int("participants", n).Msg("winner snapped")

	if err := sleep(ctx, e.clock, e.timing.Pause); err != nil {
		log.Debug().Err(err).Int("winner_index", winner).Msg("draw cancelled before commit")
		return 0, err
	}

	obs.Commit(winner)
	return winner, nil
}
