package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/legoraffle/go/internal/raffle/random"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
	BlockUntilContext(ctx context.Context, n int) error
}

// fixedSource always draws val (mod n).
type fixedSource struct{ val int }

func (s fixedSource) IntN(n int) int   { return s.val % n }
func (s fixedSource) Float64() float64 { return 0 }

type recorder struct {
	mu         sync.Mutex
	highlights []int
	snaps      []int
	commits    []int
	snapped    chan int
}

func newRecorder() *recorder {
	return &recorder{snapped: make(chan int, 1)}
}

func (r *recorder) Highlight(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlights = append(r.highlights, i)
}

func (r *recorder) Snap(i int) {
	r.mu.Lock()
	r.snaps = append(r.snaps, i)
	r.mu.Unlock()
	r.snapped <- i
}

func (r *recorder) Commit(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, i)
}

func (r *recorder) snapshot() (highlights, snaps, commits []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.highlights...), append([]int(nil), r.snaps...), append([]int(nil), r.commits...)
}

type result struct {
	winner int
	err    error
}

func start(ctx context.Context, e *Engine, n int, obs Observer) <-chan result {
	out := make(chan result, 1)
	go func() {
		w, err := e.Run(ctx, n, obs)
		out <- result{winner: w, err: err}
	}()
	return out
}

// drive advances the clock by step() each time a timer is pending until the run finishes.
func drive(t *testing.T, clock fakeClock, step func() time.Duration, results <-chan result) result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		select {
		case r := <-results:
			done <- r
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			select {
			case r := <-done:
				return r
			default:
				t.Fatalf("draw did not finish: %v", err)
			}
		}
		clock.Advance(step())
	}
}

func constant(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func TestRun_RoundRobinThenSnap(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e := New(clock, fixedSource{val: 1}, DefaultTiming())
	rec := newRecorder()

	// 600ms exceeds the longest spin delay, so every advance fires exactly one timer.
	res := drive(t, clock, constant(600*time.Millisecond), start(context.Background(), e, 3, rec))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.winner != 1 {
		t.Errorf("expected winner 1, got %d", res.winner)
	}

	highlights, snaps, commits := rec.snapshot()
	// advances at 0, 600, ..., 4800ms
	want := []int{1, 2, 0, 1, 2, 0, 1, 2, 0}
	if diff := cmp.Diff(want, highlights); diff != "" {
		t.Errorf("highlight sequence mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, snaps); diff != "" {
		t.Errorf("snaps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, commits); diff != "" {
		t.Errorf("commits mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_TickCountFollowsPolicy(t *testing.T) {
	timing := DefaultTiming()

	wantTicks := 0
	for elapsed := time.Duration(0); elapsed < timing.Total; elapsed += timing.Delay(elapsed) {
		wantTicks++
	}

	clock := clockwork.NewFakeClock()
	e := New(clock, fixedSource{val: 0}, timing)
	rec := newRecorder()

	var elapsed time.Duration
	step := func() time.Duration {
		if elapsed < timing.Total {
			d := timing.Delay(elapsed)
			elapsed += d
			return d
		}
		return timing.Pause
	}

	res := drive(t, clock, step, start(context.Background(), e, 5, rec))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}

	highlights, _, commits := rec.snapshot()
	if len(highlights) != wantTicks {
		t.Errorf("expected %d advances, got %d", wantTicks, len(highlights))
	}
	for i, h := range highlights {
		if want := (i + 1) % 5; h != want {
			t.Fatalf("advance %d: expected index %d, got %d", i, want, h)
		}
	}
	if len(commits) != 1 {
		t.Errorf("expected one commit, got %v", commits)
	}
}

func TestRun_WinnerIndependentOfSpin(t *testing.T) {
	for _, total := range []time.Duration{300 * time.Millisecond, 2 * time.Second, 5 * time.Second} {
		for n := 2; n <= 6; n++ {
			clock := clockwork.NewFakeClock()
			timing := DefaultTiming()
			timing.Total = total
			e := New(clock, fixedSource{val: 4}, timing)
			rec := newRecorder()

			res := drive(t, clock, constant(time.Second), start(context.Background(), e, n, rec))
			if res.err != nil {
				t.Fatalf("total=%s n=%d: unexpected error: %v", total, n, res.err)
			}
			if want := 4 % n; res.winner != want {
				t.Errorf("total=%s n=%d: expected winner %d, got %d", total, n, want, res.winner)
			}
		}
	}
}

func TestRun_CancelDuringSpin(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e := New(clock, fixedSource{val: 0}, DefaultTiming())
	rec := newRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	results := start(ctx, e, 4, rec)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	for i := 0; i < 3; i++ {
		if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
			t.Fatalf("timer never scheduled: %v", err)
		}
		clock.Advance(100 * time.Millisecond)
	}
	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("timer never scheduled: %v", err)
	}

	cancel()
	res := <-results
	if !errors.Is(res.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.err)
	}

	before, _, _ := rec.snapshot()
	clock.Advance(time.Minute)
	after, snaps, commits := rec.snapshot()

	if len(after) != len(before) {
		t.Errorf("highlight changed after cancel: %v -> %v", before, after)
	}
	if len(snaps) != 0 || len(commits) != 0 {
		t.Errorf("expected no snap or commit after cancel, got snaps=%v commits=%v", snaps, commits)
	}
}

func TestRun_CancelDuringPause(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e := New(clock, fixedSource{val: 2}, DefaultTiming())
	rec := newRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	results := start(ctx, e, 3, rec)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()

	snapped := false
	for !snapped {
		if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
			t.Fatalf("timer never scheduled: %v", err)
		}
		select {
		case idx := <-rec.snapped:
			if idx != 2 {
				t.Errorf("expected snap to 2, got %d", idx)
			}
			snapped = true
		default:
			clock.Advance(600 * time.Millisecond)
		}
	}

	cancel()
	res := <-results
	if !errors.Is(res.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.err)
	}

	clock.Advance(time.Minute)
	if _, _, commits := rec.snapshot(); len(commits) != 0 {
		t.Errorf("expected no commit after cancel, got %v", commits)
	}
}

func TestRun_Empty(t *testing.T) {
	e := New(clockwork.NewFakeClock(), fixedSource{}, DefaultTiming())
	if _, err := e.Run(context.Background(), 0, newRecorder()); !errors.Is(err, ErrEmptyDraw) {
		t.Errorf("expected ErrEmptyDraw, got %v", err)
	}
}

func TestDraw_Uniform(t *testing.T) {
	const (
		n     = 4
		draws = 60000
	)
	src := random.Seeded(42, 1024)

	counts := make([]int, n)
	for i := 0; i < draws; i++ {
		idx := Draw(src, n)
		if idx < 0 || idx >= n {
			t.Fatalf("draw out of range: %d", idx)
		}
		counts[idx]++
	}

	expected := draws / n
	tolerance := expected / 20 // 5%
	for i, c := range counts {
		if c < expected-tolerance || c > expected+tolerance {
			t.Errorf("index %d drawn %d times, expected %d±%d", i, c, expected, tolerance)
		}
	}
}

func TestSpin_StopsAfterDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var ticks []time.Duration
	spin := Spin{
		Clock:    clock,
		Duration: time.Second,
		Policy:   func(time.Duration) time.Duration { return 100 * time.Millisecond },
		Tick:     func(elapsed time.Duration) { ticks = append(ticks, elapsed) },
	}

	done := make(chan error, 1)
	go func() { done <- spin.Run(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("tick %d: timer never scheduled: %v", i, err)
		}
		clock.Advance(100 * time.Millisecond)
	}

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ticks) != 10 {
		t.Fatalf("expected 10 ticks, got %d", len(ticks))
	}
	for i, elapsed := range ticks {
		if want := time.Duration(i) * 100 * time.Millisecond; elapsed != want {
			t.Errorf("tick %d: expected elapsed %s, got %s", i, want, elapsed)
		}
	}
}
