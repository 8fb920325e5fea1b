package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/raffle/engine"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
)

var (
	// ErrNotIdle is returned by Start while a draw is running or finished.
	ErrNotIdle = errors.New("session is not idle")
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("session closed")
)

// Transition describes one applied event.
type Transition struct {
	Event Event
	Prev  State
	Next  State
}

// Listener is notified of every transition, in order, while the controller
// lock is held. Listeners must return quickly and must not call back into the
// controller.
type Listener func(Transition)

type subscription struct {
	id uint64
	l  Listener
}

// Controller owns the single raffle session and its running draw.
type Controller struct {
	id      uuid.UUID
	engine  *engine.Engine
	palette participant.Palette

	mu        sync.Mutex
	state     State
	listeners []subscription
	nextSubID uint64
	closed    bool

	cancelDraw context.CancelFunc
	drawDone   chan struct{}
}

// NewController creates an Idle session that runs draws on eng.
func NewController(eng *engine.Engine, palette participant.Palette) *Controller {
	return &Controller{
		id:      uuid.New(),
		engine:  eng,
		palette: palette,
		state:   Initial(),
	}
}

// ID identifies the session for the lifetime of the process.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Subscribe registers l for all future transitions. It returns the state l
// starts from, so no transition falls between the two, and a func that
// removes l.
func (c *Controller) Subscribe(l Listener) (State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.listeners = append(c.listeners, subscription{id: id, l: l})

	var once sync.Once
	return c.state, func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Controller) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = slices.DeleteFunc(c.listeners, func(sub subscription) bool {
		return sub.id == id
	})
}

// State returns the current state. The Participants slice is shared and must
// not be modified.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetText replaces the raw participant text.
func (c *Controller) SetText(text string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state, ErrClosed
	}
	return c.apply(TextChanged{Text: text}), nil
}

// Start begins a draw over the names in the current text. With fewer than two
// names it records the validation message and returns an error wrapping
// participant.ErrTooFewParticipants.
func (c *Controller) Start() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state, ErrClosed
	}
	if c.state.Phase != PhaseIdle {
		return c.state, ErrNotIdle
	}

	next := c.apply(StartRequested{DrawID: uuid.New(), Palette: c.palette})
	if next.Phase != PhaseRunning {
		return next, fmt.Errorf("start draw: %w", participant.ErrTooFewParticipants)
	}

	c.launch(next.DrawID, len(next.Participants))
	log.Info().
		Str("raffle_id", c.id.String()).
		Str("draw_id", next.DrawID.String()).
		Int("participants", len(next.Participants)).
		Msg("draw started")
	return next, nil
}

// DrawAgain cancels any running draw and returns to Idle keeping the text.
func (c *Controller) DrawAgain() (State, error) {
	return c.reset(DrawAgain{})
}

// NewRaffle cancels any running draw and returns to Idle with empty text.
func (c *Controller) NewRaffle() (State, error) {
	return c.reset(NewRaffle{})
}

// Close cancels any running draw and waits for it to stop. Later commands
// return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	cancel, done := c.detach()
	c.mu.Unlock()

	stop(cancel, done)
}

func (c *Controller) reset(ev Event) (State, error) {
	c.mu.Lock()
	if c.closed {
		st := c.state
		c.mu.Unlock()
		return st, ErrClosed
	}
	wasRunning := c.state.Phase == PhaseRunning
	next := c.apply(ev)
	cancel, done := c.detach()
	c.mu.Unlock()

	// The engine may be blocked dispatching to us, so wait outside the lock.
	stop(cancel, done)
	if wasRunning {
		log.Info().Str("raffle_id", c.id.String()).Msg("running draw cancelled")
	}
	return next, nil
}

// apply reduces ev into the state and notifies listeners. c.mu must be held.
func (c *Controller) apply(ev Event) State {
	next, changed := ev.apply(c.state)
	if !changed {
		return c.state
	}
	prev := c.state
	c.state = next
	for _, sub := range c.listeners {
		sub.l(Transition{Event: ev, Prev: prev, Next: next})
	}
	return next
}

// dispatch applies an engine event. Events of a superseded draw are dropped
// by the reducer.
func (c *Controller) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(ev)
}

// launch starts the engine goroutine for drawID. c.mu must be held.
func (c *Controller) launch(drawID uuid.UUID, n int) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancelDraw = cancel
	c.drawDone = done

	go func() {
		defer close(done)
		defer cancel()

		winner, err := c.engine.Run(ctx, n, drawObserver{c: c, drawID: drawID})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("draw_id", drawID.String()).Msg("draw failed")
			}
			return
		}
		log.Info().
			Str("raffle_id", c.id.String()).
			Str("draw_id", drawID.String()).
			Int("winner_index", winner).
			Msg("winner selected")
	}()
}

// detach hands over the running draw's cancel func and done channel. c.mu
// must be held.
func (c *Controller) detach() (context.CancelFunc, chan struct{}) {
	cancel, done := c.cancelDraw, c.drawDone
	c.cancelDraw, c.drawDone = nil, nil
	return cancel, done
}

func stop(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// drawObserver forwards engine progress of one draw into the controller.
type drawObserver struct {
	c      *Controller
	drawID uuid.UUID
}

func (o drawObserver) Highlight(index int) {
	o.c.dispatch(Highlighted{DrawID: o.drawID, Index: index})
}

func (o drawObserver) Snap(index int) {
	o.c.dispatch(Snapped{DrawID: o.drawID, Index: index})
}

func (o drawObserver) Commit(index int) {
	o.c.dispatch(Committed{DrawID: o.drawID, Index: index})
}
