// Package random abstracts the random source used by the raffle so tests can
// substitute deterministic generators.
package random

import "math/rand/v2"

// Source produces random values. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a non-negative int in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a float64 in [0.0, 1.0).
	Float64() float64
}

// Global delegates to the auto-seeded, goroutine-safe math/rand/v2 top-level
// generator.
type Global struct{}

func (Global) IntN(n int) int { return rand.IntN(n) }

func (Global) Float64() float64 { return rand.Float64() }

// Seeded returns a reproducible PCG-backed source. It is not safe for
// concurrent use.
func Seeded(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}
