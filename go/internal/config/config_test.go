package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/mcdev12/legoraffle/go/internal/raffle/engine"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RAFFLE_CONFIG", "RAFFLE_TITLE", "LOG_LEVEL", "RAFFLE_LOG_FILE", "PORT",
		"CONFETTI_COUNT", "NATS_URL", "NATS_SUBJECT_PREFIX", "NATS_STREAM", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(engine.DefaultTiming(), cfg.EngineTiming()); diff != "" {
		t.Errorf("timing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(participant.DefaultPalette, cfg.ParticipantPalette()); diff != "" {
		t.Errorf("palette mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_YAMLAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "raffle.yaml")
	yaml := `
title: Office Raffle
palette: ["#111111", "#222222"]
fanfare: false
timing:
  base_ms: 50
  total_ms: 3000
confetti:
  count: 80
server:
  port: "9000"
nats:
  url: nats://file:4222
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9100")
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("CONFETTI_COUNT", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Title != "Office Raffle" || cfg.Fanfare {
		t.Errorf("title = %q, fanfare = %v", cfg.Title, cfg.Fanfare)
	}
	if diff := cmp.Diff(participant.Palette{"#111111", "#222222"}, cfg.ParticipantPalette()); diff != "" {
		t.Errorf("palette mismatch (-want +got):\n%s", diff)
	}
	want := engine.Timing{
		Base:   50 * time.Millisecond,
		Growth: 500 * time.Millisecond,
		Total:  3 * time.Second,
		Pause:  time.Second,
	}
	if diff := cmp.Diff(want, cfg.EngineTiming()); diff != "" {
		t.Errorf("timing mismatch (-want +got):\n%s", diff)
	}
	if cfg.Confetti.Count != 80 {
		t.Errorf("confetti count = %d, want the file value", cfg.Confetti.Count)
	}
	if cfg.Addr() != ":9100" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.NATS.URL != "nats://env:4222" || cfg.NATS.SubjectPrefix != "raffle.events" {
		t.Errorf("nats = %+v", cfg.NATS)
	}
	if diff := cmp.Diff([]string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins); diff != "" {
		t.Errorf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "raffle.yaml")
	if err := os.WriteFile(path, []byte("timing: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoad_UsesRaffleConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("title: From Env Path\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RAFFLE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "From Env Path" {
		t.Errorf("title = %q", cfg.Title)
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := (Config{LogLevel: in}).Level(); got != want {
			t.Errorf("Level(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestAnnounce(t *testing.T) {
	cfg := Default()
	if got := cfg.Announce(); got.URL != "" || got.SubjectPrefix != "raffle.events" {
		t.Errorf("default announce config = %+v", got)
	}

	cfg.NATS = NATSConfig{URL: "nats://broker:4222", SubjectPrefix: "office.raffle", Stream: "RAFFLE"}
	got := cfg.Announce()
	if got.URL != "nats://broker:4222" || got.SubjectPrefix != "office.raffle" || got.StreamName != "RAFFLE" {
		t.Errorf("announce config = %+v", got)
	}
	if got.MaxReconnects != -1 {
		t.Errorf("MaxReconnects = %d, want the default -1", got.MaxReconnects)
	}
}
