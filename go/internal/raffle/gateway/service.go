// Package gateway serves the raffle to browsers: the page, the command
// endpoints, a JSON state snapshot and a WebSocket stream that pushes every
// state change with its rendered view.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/legoraffle/go/internal/raffle/confetti"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
	"github.com/mcdev12/legoraffle/go/internal/raffle/view"
)

// Raffle is the session the gateway exposes. *session.Controller implements it.
type Raffle interface {
	ID() uuid.UUID
	State() session.State
	SetText(text string) (session.State, error)
	Start() (session.State, error)
	DrawAgain() (session.State, error)
	NewRaffle() (session.State, error)
	Subscribe(l session.Listener) (session.State, func())
}

// FanfarePath is where the celebration jingle is served.
const FanfarePath = "/fanfare.wav"

// Config holds configuration for the raffle gateway
type Config struct {
	ConnectionConfig ConnectionConfig
	Title            string
	Palette          participant.Palette
	ConfettiCount    int
	// Fanfare is a WAV file served at FanfarePath. Nil disables the jingle.
	Fanfare        []byte
	AllowedOrigins []string
}

// DefaultConfig returns default configuration for the raffle gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		Title:            view.DefaultTitle,
		Palette:          participant.DefaultPalette,
		ConfettiCount:    confetti.DefaultCount,
	}
}

// Service is the raffle gateway that handles HTTP requests, WebSocket
// connections and state broadcasting
type Service struct {
	raffle            Raffle
	renderer          *view.Renderer
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	config            Config
	startedAt         time.Time

	rngMu sync.Mutex
	rng   random.Source
}

// NewService creates the gateway and subscribes it to raffle. A nil rng
// means the global math/rand/v2 generator.
func NewService(config Config, raffle Raffle, rng random.Source) (*Service, error) {
	if rng == nil {
		rng = random.Global{}
	}

	opts := view.RenderOptions{Title: config.Title, SocketPath: "/ws/raffle"}
	if len(config.Fanfare) > 0 {
		opts.FanfareURL = FanfarePath
	}
	renderer, err := view.NewRenderer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	s := &Service{
		raffle:            raffle,
		renderer:          renderer,
		connectionManager: NewConnectionManager(config.ConnectionConfig),
		config:            config,
		startedAt:         time.Now(),
		rng:               rng,
	}
	s.wsHandler = NewWebSocketHandler(s.connectionManager)

	// Subscribing returns the state the first broadcast follows, so new
	// connections never miss or reorder a transition.
	st, unsubscribe := raffle.Subscribe(s.onTransition)
	seed, err := s.stateEvent(st)
	if err == nil {
		err = s.connectionManager.Seed(seed)
	}
	if err != nil {
		unsubscribe()
		return nil, fmt.Errorf("failed to seed initial state: %w", err)
	}
	return s, nil
}

// Start runs the broadcaster until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Str("raffle_id", s.raffle.ID().String()).Msg("starting raffle gateway service")

	s.connectionManager.Start(ctx)

	log.Info().Msg("raffle gateway service stopped")
	return nil
}

// RegisterRoutes registers the page, command, state and WebSocket routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /raffle/text", s.handleText)
	mux.HandleFunc("POST /raffle/start", s.handleStart)
	mux.HandleFunc("POST /raffle/again", s.handleAgain)
	mux.HandleFunc("POST /raffle/new", s.handleNew)
	mux.HandleFunc("GET /api/raffle/state", s.handleState)
	mux.HandleFunc("GET "+FanfarePath, s.handleFanfare)
	mux.HandleFunc("GET /health", handleHealth)
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("raffle gateway routes registered")
}

// Handler returns all routes wrapped with CORS and HTTP/2 cleartext support.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return h2c.NewHandler(newCORS(s.config.AllowedOrigins).Handler(mux), &http2.Server{})
}

// onTransition broadcasts every state change. It runs under the session
// lock, so it only renders and enqueues.
func (s *Service) onTransition(tr session.Transition) {
	event, err := s.stateEvent(tr.Next)
	if err != nil {
		log.Error().Err(err).Msg("failed to build state event")
		return
	}
	s.connectionManager.Broadcast(event)
}

// model builds the view for st. A winner view gets a fresh confetti burst.
func (s *Service) model(st session.State) view.Model {
	var pieces []confetti.Piece
	if st.Phase == session.PhaseFinished {
		s.rngMu.Lock()
		pieces = confetti.Generate(s.rng, s.config.Palette, s.config.ConfettiCount)
		s.rngMu.Unlock()
	}
	return view.Build(st, pieces)
}

func (s *Service) stateEvent(st session.State) (*RaffleEvent, error) {
	html, err := s.renderer.FragmentString(s.model(st))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(StateChangedPayload{State: st, HTML: html})
	if err != nil {
		return nil, fmt.Errorf("marshal state payload: %w", err)
	}

	return &RaffleEvent{
		ID:        uuid.New().String(),
		RaffleID:  s.raffle.ID().String(),
		Type:      EventTypeStateChanged,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}
