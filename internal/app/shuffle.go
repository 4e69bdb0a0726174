package app

import (
	"math/rand"
	"sync"
	"time"
)

// Intn is the random source used by Shuffle. It returns a uniform value in [0, n).
type Intn interface {
	Intn(n int) int
}

// Shuffle permutes items in place with Fisher-Yates and returns the same slice.
func Shuffle[T any](items []T, rnd Intn) []T {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// LockedRand is a time-seeded random source safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLockedRand() *LockedRand {
	return NewLockedRandWithSeed(time.Now().UnixNano())
}

// NewLockedRandWithSeed is useful for reproducible shuffles in tests.
func NewLockedRandWithSeed(seed int64) *LockedRand {
	return &LockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}
