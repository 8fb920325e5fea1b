package engine

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// DelayPolicy maps the time elapsed since a task started to the wait before its next run.
type DelayPolicy func(elapsed time.Duration) time.Duration

// Spin is a cancellable repeating task. Each run of Tick is scheduled only
// after the previous wait has fired, so at most one timer is pending.
type Spin struct {
	Clock    clockwork.Clock
	Duration time.Duration
	Policy   DelayPolicy
	Tick     func(elapsed time.Duration)
}

// Run calls Tick and waits Policy(elapsed) until Duration has elapsed since
// the first call. It returns ctx.Err() if the context ends first; Tick is
// never called after cancellation.
func (s Spin) Run(ctx context.Context) error {
	start := s.Clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		elapsed := s.Clock.Since(start)
		if elapsed >= s.Duration {
			return nil
		}

		s.Tick(elapsed)

		if err := sleep(ctx, s.Clock, s.Policy(elapsed)); err != nil {
			return err
		}
	}
}

// sleep waits d on clock or until ctx is done.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	timer := clock.NewTimer(d)
	select {
	case <-timer.Chan():
		return ctx.Err()
	case <-ctx.Done():
		stopAndDrainTimer(timer)
		return ctx.Err()
	}
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
