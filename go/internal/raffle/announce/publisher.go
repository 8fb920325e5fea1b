package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// Config holds the NATS connection and subject settings.
type Config struct {
	URL           string
	SubjectPrefix string
	// StreamName enables JetStream publishing into this stream. Empty means
	// core NATS publish without persistence.
	StreamName      string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration
	Replicas        int
	DuplicateWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:             nats.DefaultURL,
		SubjectPrefix:   "raffle.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
	}
}

// Message is one lifecycle event ready to publish.
type Message struct {
	ID        uuid.UUID
	Type      string
	RaffleID  uuid.UUID
	DrawID    string
	Timestamp time.Time
	Payload   json.RawMessage
}

// Subject returns the NATS subject for m under prefix.
func (m Message) Subject(prefix string) string {
	return fmt.Sprintf("%s.%s", prefix, m.Type)
}

type envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	RaffleID  string          `json:"raffleId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode returns the JSON envelope published for m.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(envelope{
		EventID:   m.ID.String(),
		EventType: m.Type,
		RaffleID:  m.RaffleID.String(),
		Timestamp: m.Timestamp.UTC(),
		Payload:   m.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

func (m Message) header() nats.Header {
	return nats.Header{
		"Event-Type": []string{m.Type},
		"Raffle-ID":  []string{m.RaffleID.String()},
		"Draw-ID":    []string{m.DrawID},
		"Event-ID":   []string{m.ID.String()},
	}
}

// Publisher sends lifecycle messages somewhere.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// NopPublisher drops every message. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Message) error { return nil }

func (NopPublisher) Close() error { return nil }

// NATSPublisher publishes lifecycle messages to NATS, through JetStream when
// a stream is configured.
type NATSPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
}

func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("legoraffle"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	p := &NATSPublisher{nc: nc, config: cfg}
	if cfg.StreamName == "" {
		return p, nil
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	p.js = js

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

// Dial returns a NATS publisher for cfg. An empty URL or a failed connect
// yields a NopPublisher so the raffle keeps running without announcements.
func Dial(cfg Config) Publisher {
	if cfg.URL == "" {
		log.Info().Msg("NATS_URL not set, lifecycle events will not be published")
		return NopPublisher{}
	}
	pub, err := NewNATSPublisher(cfg)
	if err != nil {
		log.Warn().Err(err).Str("url", cfg.URL).Msg("NATS unavailable, lifecycle events will not be published")
		return NopPublisher{}
	}
	log.Info().Str("url", cfg.URL).Str("stream", cfg.StreamName).Msg("publishing lifecycle events to NATS")
	return pub
}

func (p *NATSPublisher) ensureStream(ctx context.Context) error {
	sc := streamConfig(p.config)

	stream, err := p.js.Stream(ctx, sc.Name)
	if err != nil {
		if _, err = p.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", sc.Name).Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = p.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().Str("stream", sc.Name).Msg("updated JetStream stream")
	}
	return nil
}

func (p *NATSPublisher) Publish(ctx context.Context, msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}

	natsMsg := &nats.Msg{
		Subject: msg.Subject(p.config.SubjectPrefix),
		Data:    data,
		Header:  msg.header(),
	}

	if p.js == nil {
		if err := p.nc.PublishMsg(natsMsg); err != nil {
			return fmt.Errorf("publish to NATS: %w", err)
		}
		log.Debug().Str("subject", natsMsg.Subject).Str("event_id", msg.ID.String()).Msg("published to NATS")
		return nil
	}

	ack, err := p.js.PublishMsg(ctx, natsMsg,
		jetstream.WithMsgID(msg.ID.String()),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", natsMsg.Subject).
		Str("event_id", msg.ID.String()).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Msg("published to JetStream")
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

func streamConfig(cfg Config) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Raffle draw lifecycle events",
		Subjects:    []string{fmt.Sprintf("%s.>", cfg.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    cfg.Replicas,
		Duplicates:  cfg.DuplicateWindow,
	}
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
