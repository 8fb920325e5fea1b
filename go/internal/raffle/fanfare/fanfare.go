// Package fanfare synthesizes the short jingle played when a winner is
// revealed and encodes it as WAV.
package fanfare

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
	"github.com/orcaman/writerseeker"
)

// SampleRate of the encoded jingle.
const SampleRate = beep.SampleRate(22050)

// Note is one tone of the jingle.
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Jingle is a rising C major arpeggio ending on a held top C.
var Jingle = []Note{
	{Freq: 523.25, Duration: 110 * time.Millisecond},  // C5
	{Freq: 659.25, Duration: 110 * time.Millisecond},  // E5
	{Freq: 783.99, Duration: 110 * time.Millisecond},  // G5
	{Freq: 1046.50, Duration: 500 * time.Millisecond}, // C6
}

const (
	attack  = 8 * time.Millisecond
	release = 60 * time.Millisecond
	volume  = 0.6
)

// Streamer returns the notes in sequence at sample rate sr.
func Streamer(notes []Note, sr beep.SampleRate) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		t, err := tone(n, sr)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
	}
	return withVolume(beep.Seq(parts...), volume), nil
}

// WAV encodes the notes as a mono 16-bit WAV file.
func WAV(notes []Note, sr beep.SampleRate) ([]byte, error) {
	s, err := Streamer(notes, sr)
	if err != nil {
		return nil, err
	}

	format := beep.Format{SampleRate: sr, NumChannels: 1, Precision: 2}
	// wav.Encode seeks back to patch the header sizes.
	var ws writerseeker.WriterSeeker
	if err := wav.Encode(&ws, s, format); err != nil {
		return nil, fmt.Errorf("encode fanfare: %w", err)
	}
	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("read encoded fanfare: %w", err)
	}
	return data, nil
}

// Default encodes Jingle at SampleRate.
func Default() ([]byte, error) {
	return WAV(Jingle, SampleRate)
}

// tone mixes the note with a quieter octave and shapes it with a short
// attack and release.
func tone(n Note, sr beep.SampleRate) (beep.Streamer, error) {
	fundamental, err := generators.SineTone(sr, n.Freq)
	if err != nil {
		return nil, fmt.Errorf("fundamental %.2f Hz: %w", n.Freq, err)
	}
	overtone, err := generators.SineTone(sr, 2*n.Freq)
	if err != nil {
		return nil, fmt.Errorf("overtone %.2f Hz: %w", 2*n.Freq, err)
	}

	samples := sr.N(n.Duration)
	mixed := beep.Take(samples, beep.Mix(
		withVolume(fundamental, 0.7),
		withVolume(overtone, 0.3),
	))
	return newEnvelope(mixed, samples, sr.N(attack), sr.N(release)), nil
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// envelope ramps gain up over the attack and down over the release.
type envelope struct {
	streamer beep.Streamer
	position int
	total    int
	attack   int
	release  int
}

func newEnvelope(s beep.Streamer, total, attack, release int) beep.Streamer {
	if attack+release > total {
		attack, release = total/2, total/2
	}
	return &envelope{streamer: s, total: total, attack: attack, release: release}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1.0
		if e.position < e.attack {
			gain = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; remaining < e.release {
			gain = math.Min(gain, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }
