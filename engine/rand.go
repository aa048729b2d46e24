package engine

import (
	"time"

	"golang.org/x/exp/rand"
)

// Source is the only source of nondeterminism in a session. Tests replace
// it with scripted sequences.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewSource returns a PCG generator seeded with seed, or with the current
// time if seed is 0.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(uint64(seed)))
}
