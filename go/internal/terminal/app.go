// Package terminal is the keyboard driven front end of the raffle. It draws
// the same three views as the browser with tcell.
package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/raffle/confetti"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
	"github.com/mcdev12/legoraffle/go/internal/raffle/view"
)

// FrameInterval paces the confetti animation.
const FrameInterval = 50 * time.Millisecond

// Raffle is the session driven by the terminal. *session.Controller
// implements it.
type Raffle interface {
	State() session.State
	SetText(text string) (session.State, error)
	Start() (session.State, error)
	DrawAgain() (session.State, error)
	NewRaffle() (session.State, error)
	Subscribe(l session.Listener) (session.State, func())
}

// Options tune the terminal front end. Zero values mean defaults.
type Options struct {
	Title         string
	Palette       participant.Palette
	ConfettiCount int
	Clock         clockwork.Clock
	Rand          random.Source
}

// App runs the raffle on a tcell screen.
type App struct {
	screen tcell.Screen
	raffle Raffle
	opts   Options

	state     session.State
	pieces    []confetti.Piece
	mountedAt time.Time
}

// New creates an app on an initialized screen.
func New(screen tcell.Screen, raffle Raffle, opts Options) *App {
	if opts.Title == "" {
		opts.Title = view.DefaultTitle
	}
	if len(opts.Palette) == 0 {
		opts.Palette = participant.DefaultPalette
	}
	if opts.ConfettiCount <= 0 {
		opts.ConfettiCount = confetti.DefaultCount
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = random.Global{}
	}
	return &App{screen: screen, raffle: raffle, opts: opts}
}

// Run handles input and redraws until the user quits or ctx is done. The
// caller owns the screen's Init and Fini.
func (a *App) Run(ctx context.Context) error {
	initial, unsubscribe := a.raffle.Subscribe(func(tr session.Transition) {
		// Called under the session lock: hand the state to the UI loop.
		if err := a.screen.PostEvent(tcell.NewEventInterrupt(tr.Next)); err != nil {
			log.Warn().Err(err).Msg("terminal event queue full, dropping state update")
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := a.opts.Clock.NewTicker(FrameInterval)
	defer ticker.Stop()

	a.setState(initial)
	a.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.Chan():
			if a.state.Phase == session.PhaseFinished {
				a.draw()
			}

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if a.handleKey(ev) {
					return nil
				}
			case *tcell.EventInterrupt:
				if st, ok := ev.Data().(session.State); ok {
					a.setState(st)
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
			a.draw()
		}
	}
}

// setState records st and starts a confetti burst when the winner view mounts.
func (a *App) setState(st session.State) {
	if st.Phase == session.PhaseFinished && a.state.Phase != session.PhaseFinished {
		a.pieces = confetti.Generate(a.opts.Rand, a.opts.Palette, a.opts.ConfettiCount)
		a.mountedAt = a.opts.Clock.Now()
	}
	if st.Phase != session.PhaseFinished {
		a.pieces = nil
	}
	a.state = st
}

// handleKey applies a key press and reports whether the app should quit.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	}

	var err error
	switch a.raffle.State().Phase {
	case session.PhaseIdle:
		err = a.handleEntryKey(ev)
	case session.PhaseFinished:
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'a', 'A':
				_, err = a.raffle.DrawAgain()
			case 'n', 'N':
				_, err = a.raffle.NewRaffle()
			}
		}
	}
	if err != nil {
		log.Debug().Err(err).Msg("terminal command refused")
	}
	return false
}

func (a *App) handleEntryKey(ev *tcell.EventKey) error {
	text := []rune(a.raffle.State().Text)

	switch ev.Key() {
	case tcell.KeyCtrlD, tcell.KeyF2:
		_, err := a.raffle.Start()
		return err
	case tcell.KeyEnter:
		text = append(text, '\n')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(text) == 0 {
			return nil
		}
		text = text[:len(text)-1]
	case tcell.KeyRune:
		text = append(text, ev.Rune())
	default:
		return nil
	}

	_, err := a.raffle.SetText(string(text))
	return err
}
