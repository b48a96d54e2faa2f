package agent

import (
	"math/rand/v2"
	"sync"
)

// RandSource picks an index in [0, n).
type RandSource interface {
	IntN(n int) int
}

// RandFunc adapts a function to RandSource.
type RandFunc func(n int) int

func (f RandFunc) IntN(n int) int { return f(n) }

// DefaultRand uses the runtime-seeded global generator.
func DefaultRand() RandSource {
	return RandFunc(rand.IntN)
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand returns a reproducible source, safe for concurrent use.
func NewSeededRand(seed uint64) RandSource {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Sequence replays fixed indices in order and then repeats the last one.
// It is meant for tests and demos that need a known outcome.
type Sequence struct {
	mu      sync.Mutex
	indices []int
	next    int
}

func NewSequence(indices ...int) *Sequence {
	return &Sequence{indices: indices}
}

func (s *Sequence) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.indices) == 0 {
		return 0
	}
	i := s.indices[min(s.next, len(s.indices)-1)]
	s.next++
	return i % n
}
