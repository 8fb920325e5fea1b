// Package config loads the raffle settings from an optional YAML file and
// environment variables. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/legoraffle/go/internal/raffle/announce"
	"github.com/mcdev12/legoraffle/go/internal/raffle/confetti"
	"github.com/mcdev12/legoraffle/go/internal/raffle/engine"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/view"
)

// DefaultPath is read when RAFFLE_CONFIG is unset.
const DefaultPath = "raffle.yaml"

type Config struct {
	Title    string   `yaml:"title"`
	Palette  []string `yaml:"palette"`
	Fanfare  bool     `yaml:"fanfare"`
	LogLevel string   `yaml:"log_level"`
	LogFile  string   `yaml:"log_file"`

	Timing   TimingConfig   `yaml:"timing"`
	Confetti ConfettiConfig `yaml:"confetti"`
	Server   ServerConfig   `yaml:"server"`
	NATS     NATSConfig     `yaml:"nats"`
}

// TimingConfig holds the draw timing in milliseconds.
type TimingConfig struct {
	BaseMs   int `yaml:"base_ms"`
	GrowthMs int `yaml:"growth_ms"`
	TotalMs  int `yaml:"total_ms"`
	PauseMs  int `yaml:"pause_ms"`
}

type ConfettiConfig struct {
	Count int `yaml:"count"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NATSConfig enables lifecycle announcements when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Stream        string `yaml:"stream"`
}

// Default returns the built-in settings.
func Default() Config {
	timing := engine.DefaultTiming()
	return Config{
		Title:    view.DefaultTitle,
		Palette:  append([]string(nil), participant.DefaultPalette...),
		Fanfare:  true,
		LogLevel: "info",
		Timing: TimingConfig{
			BaseMs:   int(timing.Base.Milliseconds()),
			GrowthMs: int(timing.Growth.Milliseconds()),
			TotalMs:  int(timing.Total.Milliseconds()),
			PauseMs:  int(timing.Pause.Milliseconds()),
		},
		Confetti: ConfettiConfig{Count: confetti.DefaultCount},
		Server:   ServerConfig{Port: "8080"},
		NATS:     NATSConfig{SubjectPrefix: "raffle.events"},
	}
}

// Load reads the file named by RAFFLE_CONFIG (default raffle.yaml) if it
// exists, then applies environment overrides.
func Load() (Config, error) {
	return LoadFile(getEnv("RAFFLE_CONFIG", DefaultPath))
}

// LoadFile reads path if it exists, then applies environment overrides. A
// missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Title = getEnv("RAFFLE_TITLE", c.Title)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("RAFFLE_LOG_FILE", c.LogFile)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Confetti.Count = getEnvAsInt("CONFETTI_COUNT", c.Confetti.Count)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)
	c.NATS.Stream = getEnv("NATS_STREAM", c.NATS.Stream)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
}

// EngineTiming converts the millisecond settings. Invalid values fall back
// to the defaults when the engine normalizes them.
func (c Config) EngineTiming() engine.Timing {
	return engine.Timing{
		Base:   time.Duration(c.Timing.BaseMs) * time.Millisecond,
		Growth: time.Duration(c.Timing.GrowthMs) * time.Millisecond,
		Total:  time.Duration(c.Timing.TotalMs) * time.Millisecond,
		Pause:  time.Duration(c.Timing.PauseMs) * time.Millisecond,
	}.Normalize()
}

// ParticipantPalette returns the configured palette.
func (c Config) ParticipantPalette() participant.Palette {
	return participant.Palette(c.Palette)
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Announce returns the NATS publisher settings. An empty URL disables
// publishing.
func (c Config) Announce() announce.Config {
	cfg := announce.DefaultConfig()
	cfg.URL = c.NATS.URL
	if c.NATS.SubjectPrefix != "" {
		cfg.SubjectPrefix = c.NATS.SubjectPrefix
	}
	cfg.StreamName = c.NATS.Stream
	return cfg
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
