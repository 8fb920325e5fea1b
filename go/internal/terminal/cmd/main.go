package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/config"
	"github.com/mcdev12/legoraffle/go/internal/raffle/announce"
	"github.com/mcdev12/legoraffle/go/internal/raffle/engine"
	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
	"github.com/mcdev12/legoraffle/go/internal/terminal"
)

func main() {
	// The screen belongs to tcell, so logs go to a file or nowhere.
	log.Logger = zerolog.New(io.Discard)

	if err := run(); err != nil {
		// run has restored the terminal by now.
		console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		console.Error().Err(err).Msg("terminal raffle failed")
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	if envErr != nil {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	clock := clockwork.NewRealClock()
	timing := cfg.EngineTiming()
	controller := session.NewController(engine.New(clock, random.Global{}, timing), cfg.ParticipantPalette())
	defer controller.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := announce.Dial(cfg.Announce())
	defer publisher.Close()
	announcer := announce.New(publisher, clock, controller.ID(), timing.Total)
	controller.Subscribe(announcer.Listen)
	go announcer.Run(ctx)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	app := terminal.New(screen, controller, terminal.Options{
		Title:         cfg.Title,
		Palette:       cfg.ParticipantPalette(),
		ConfettiCount: cfg.Confetti.Count,
		Clock:         clock,
	})

	log.Info().Str("raffle_id", controller.ID().String()).Msg("starting terminal raffle")
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("run terminal raffle: %w", err)
	}
	log.Info().Msg("terminal raffle stopped")
	return nil
}

// setupLogging sends logs to cfg.LogFile when set and returns a func that
// closes it.
func setupLogging(cfg config.Config) (func(), error) {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogFile == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}
