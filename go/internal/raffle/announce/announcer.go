// Package announce publishes draw lifecycle events (draw started, winner
// snapped, winner selected, raffle reset) to NATS.
package announce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/raffle/events"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
)

const queueSize = 64

// Announcer turns session transitions into lifecycle messages and publishes
// them from its own goroutine.
type Announcer struct {
	pub      Publisher
	clock    clockwork.Clock
	raffleID uuid.UUID
	spin     time.Duration
	queue    chan Message
}

// New creates an announcer for the session raffleID whose draws spin for spin.
func New(pub Publisher, clock clockwork.Clock, raffleID uuid.UUID, spin time.Duration) *Announcer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Announcer{
		pub:      pub,
		clock:    clock,
		raffleID: raffleID,
		spin:     spin,
		queue:    make(chan Message, queueSize),
	}
}

// Listen is a session.Listener. It never blocks; messages are dropped when
// the queue is full.
func (a *Announcer) Listen(tr session.Transition) {
	msg, ok := a.message(tr)
	if !ok {
		return
	}

	select {
	case a.queue <- msg:
	default:
		log.Warn().Str("event_type", msg.Type).Msg("announce queue full, dropping event")
	}
}

func (a *Announcer) message(tr session.Transition) (Message, bool) {
	now := a.clock.Now()
	lc, ok := events.FromTransition(tr, now, a.spin)
	if !ok {
		return Message{}, false
	}

	payload, err := json.Marshal(lc.Payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", lc.Type).Msg("failed to marshal lifecycle payload")
		return Message{}, false
	}

	return Message{
		ID:        uuid.New(),
		Type:      lc.Type,
		RaffleID:  a.raffleID,
		DrawID:    lc.DrawID,
		Timestamp: now,
		Payload:   payload,
	}, true
}

// Run publishes queued messages until ctx is done.
func (a *Announcer) Run(ctx context.Context) {
	log.Info().Str("raffle_id", a.raffleID.String()).Msg("announcer started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("announcer shutting down")
			return
		case msg := <-a.queue:
			pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := a.pub.Publish(pubCtx, msg); err != nil {
				log.Error().Err(err).Str("event_type", msg.Type).Msg("failed to publish lifecycle event")
			}
			cancel()
		}
	}
}
