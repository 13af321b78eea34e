package service

import (
	"math/rand"
	"sync"
)

// NewRand returns a rand.Rand whose draws are safe for concurrent use. One
// instance is shared by the assembler, the chat service and the opener, and
// every request-handling goroutine draws from it for topic choice, backoff
// jitter and speaker selection.
func NewRand(seed int64) *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewSource(seed).(rand.Source64)})
}

// lockedSource guards an unsynchronized rand source with a mutex.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
