package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/config"
	"github.com/mcdev12/legoraffle/go/internal/raffle/announce"
	"github.com/mcdev12/legoraffle/go/internal/raffle/engine"
	"github.com/mcdev12/legoraffle/go/internal/raffle/fanfare"
	"github.com/mcdev12/legoraffle/go/internal/raffle/gateway"
	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
)

type Services struct {
	Controller *session.Controller
	Gateway    *gateway.Service
	Announcer  *announce.Announcer
	Publisher  announce.Publisher

	wg sync.WaitGroup
}

func setupServices(cfg config.Config) (*Services, error) {
	// Wire up the session
	// Engine → Controller → listeners (gateway, announcer)
	clock := clockwork.NewRealClock()
	timing := cfg.EngineTiming()
	eng := engine.New(clock, random.Global{}, timing)
	controller := session.NewController(eng, cfg.ParticipantPalette())

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.Title = cfg.Title
	gatewayConfig.Palette = cfg.ParticipantPalette()
	gatewayConfig.ConfettiCount = cfg.Confetti.Count
	gatewayConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	if cfg.Fanfare {
		wav, err := fanfare.Default()
		if err != nil {
			controller.Close()
			return nil, fmt.Errorf("failed to synthesize fanfare: %w", err)
		}
		gatewayConfig.Fanfare = wav
	}

	gatewayService, err := gateway.NewService(gatewayConfig, controller, nil)
	if err != nil {
		controller.Close()
		return nil, fmt.Errorf("failed to create gateway service: %w", err)
	}

	publisher := announce.Dial(cfg.Announce())
	announcer := announce.New(publisher, clock, controller.ID(), timing.Total)
	controller.Subscribe(announcer.Listen)

	return &Services{
		Controller: controller,
		Gateway:    gatewayService,
		Announcer:  announcer,
		Publisher:  publisher,
	}, nil
}

// Start runs the gateway broadcaster and the announcer until ctx is done.
func (s *Services) Start(ctx context.Context) {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.Gateway.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()
	go func() {
		defer s.wg.Done()
		s.Announcer.Run(ctx)
	}()
}

// Wait blocks until the goroutines started by Start return.
func (s *Services) Wait() {
	s.wg.Wait()
}

// Close stops any running draw and disconnects from NATS.
func (s *Services) Close() {
	s.Controller.Close()
	if err := s.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close publisher")
	}
}
