package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/legoraffle/go/internal/raffle/confetti"
	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
)

func runningState(t *testing.T, text string) session.State {
	t.Helper()
	st := session.Reduce(session.Initial(), session.TextChanged{Text: text})
	st = session.Reduce(st, session.StartRequested{DrawID: uuid.New()})
	if st.Phase != session.PhaseRunning {
		t.Fatalf("phase = %s, want running", st.Phase)
	}
	return st
}

func TestBuild(t *testing.T) {
	running := runningState(t, "Alice\nBob\nCharlie")
	running = session.Reduce(running, session.Highlighted{DrawID: running.DrawID, Index: 2})
	finished := session.Reduce(running, session.Committed{DrawID: running.DrawID, Index: 1})
	pieces := confetti.Generate(random.Seeded(1, 1), nil, 3)

	refused := session.Reduce(session.Initial(), session.TextChanged{Text: "Alice"})
	refused = session.Reduce(refused, session.StartRequested{DrawID: uuid.New()})

	tests := []struct {
		name   string
		state  session.State
		pieces []confetti.Piece
		want   Model
	}{
		{
			name:  "empty entry",
			state: session.Initial(),
			want:  Model{Kind: KindEntry, Title: DefaultTitle},
		},
		{
			name:  "entry with validation error",
			state: refused,
			want: Model{
				Kind:  KindEntry,
				Title: DefaultTitle,
				Text:  "Alice",
				Error: participant.ValidationMessage,
				Count: 1,
			},
		},
		{
			name:  "entry ready",
			state: session.Reduce(session.Initial(), session.TextChanged{Text: "Alice\n\n Bob "}),
			want: Model{
				Kind:     KindEntry,
				Title:    DefaultTitle,
				Text:     "Alice\n\n Bob ",
				Count:    2,
				CanStart: true,
			},
		},
		{
			name:  "shuffling",
			state: running,
			want: Model{
				Kind:  KindShuffling,
				Title: DefaultTitle,
				Bricks: []Brick{
					{ID: 0, Name: "Alice", Color: participant.DefaultPalette[0]},
					{ID: 1, Name: "Bob", Color: participant.DefaultPalette[1]},
					{ID: 2, Name: "Charlie", Color: participant.DefaultPalette[2], Highlighted: true},
				},
			},
		},
		{
			name:   "winner",
			state:  finished,
			pieces: pieces,
			want: Model{
				Kind:     KindWinner,
				Title:    DefaultTitle,
				Winner:   &Brick{ID: 1, Name: "Bob", Color: participant.DefaultPalette[1], Highlighted: true},
				Confetti: pieces,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.state, tt.pieces)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("model mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_IgnoresPiecesOutsideWinner(t *testing.T) {
	pieces := confetti.Generate(random.Seeded(1, 1), nil, 3)
	if got := Build(session.Initial(), pieces); got.Confetti != nil {
		t.Errorf("entry view has %d confetti pieces", len(got.Confetti))
	}
}

func TestModel_Heading(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindEntry, "Custom"},
		{KindShuffling, ShufflingHeading},
		{KindWinner, WinnerHeading},
	}
	for _, tt := range tests {
		if got := (Model{Kind: tt.kind, Title: "Custom"}).Heading(); got != tt.want {
			t.Errorf("%s heading = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func newTestRenderer(t *testing.T, opts RenderOptions) *Renderer {
	t.Helper()
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRenderer_Page(t *testing.T) {
	r := newTestRenderer(t, RenderOptions{})
	st := session.Reduce(session.Initial(), session.TextChanged{Text: "Alice\n<b>Bob</b>"})

	var buf bytes.Buffer
	if err := r.Page(&buf, Build(st, nil)); err != nil {
		t.Fatalf("Page: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>LEGO RAFFLE</title>",
		`id="app"`,
		`data-kind="entry"`,
		Subtitle,
		`placeholder="Alice`,
		"&lt;b&gt;Bob&lt;/b&gt;",
		"2 participants",
		StartLabel,
		`data-socket="/ws/raffle"`,
		"new WebSocket(",
		"@keyframes fall",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
	if strings.Contains(page, "<b>Bob</b>") {
		t.Error("participant text is not escaped")
	}
	if strings.Contains(page, " disabled>") {
		t.Error("draw button disabled with two names")
	}
}

func TestRenderer_EntryDisabledWithError(t *testing.T) {
	r := newTestRenderer(t, RenderOptions{Title: "Office Raffle"})
	st := session.Reduce(session.Initial(), session.TextChanged{Text: "Alice"})
	st = session.Reduce(st, session.StartRequested{DrawID: uuid.New()})

	html, err := r.FragmentString(Build(st, nil))
	if err != nil {
		t.Fatalf("FragmentString: %v", err)
	}
	for _, want := range []string{
		"Office Raffle",
		participant.ValidationMessage,
		"1 participant<",
		" disabled>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("fragment does not contain %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<!DOCTYPE") {
		t.Error("fragment contains a document header")
	}
}

func TestRenderer_Shuffling(t *testing.T) {
	r := newTestRenderer(t, RenderOptions{})
	st := runningState(t, "Alice\nBob\nCharlie")
	st = session.Reduce(st, session.Highlighted{DrawID: st.DrawID, Index: 1})

	html, err := r.FragmentString(Build(st, nil))
	if err != nil {
		t.Fatalf("FragmentString: %v", err)
	}
	if got := strings.Count(html, `data-id=`); got != 3 {
		t.Errorf("bricks = %d, want 3", got)
	}
	if got := strings.Count(html, "brick highlighted"); got != 1 {
		t.Errorf("highlighted bricks = %d, want 1", got)
	}
	for _, want := range []string{ShufflingHeading, "--brick: #0055BF", `data-id="1"`} {
		if !strings.Contains(html, want) {
			t.Errorf("fragment does not contain %q", want)
		}
	}
}

func TestRenderer_Winner(t *testing.T) {
	r := newTestRenderer(t, RenderOptions{FanfareURL: "/fanfare.wav"})
	st := runningState(t, "Alice\nBob")
	st = session.Reduce(st, session.Committed{DrawID: st.DrawID, Index: 0})
	pieces := confetti.Generate(random.Seeded(9, 9), nil, confetti.DefaultCount)

	html, err := r.FragmentString(Build(st, pieces))
	if err != nil {
		t.Fatalf("FragmentString: %v", err)
	}
	if got := strings.Count(html, `class="piece piece-`); got != confetti.DefaultCount {
		t.Errorf("confetti pieces = %d, want %d", got, confetti.DefaultCount)
	}
	for _, want := range []string{
		WinnerHeading,
		"Alice",
		AgainLabel,
		NewLabel,
		`action="/raffle/again"`,
		`action="/raffle/new"`,
		`src="/fanfare.wav"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("fragment does not contain %q", want)
		}
	}
	if strings.Contains(html, "ZgotmplZ") {
		t.Error("template escaper rejected a value")
	}
}
