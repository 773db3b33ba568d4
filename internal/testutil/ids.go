package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator returns run IDs "run-0001", "run-0002", ...
//
// This enables deterministic run history in tests: the same sequence of
// recorded runs always produces the same IDs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu  sync.Mutex
	seq int
}

// NewSequenceIDGenerator creates a generator whose first ID is "run-0001".
func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

// NewID returns the next ID in the sequence.
//
// Implements store.IDGenerator.
func (g *SequenceIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("run-%04d", g.seq)
}

// Reset restarts the sequence. After Reset, the next ID is "run-0001".
func (g *SequenceIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedIDGenerator returns the same ID every time.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed generator. An empty id defaults to
// "run-fixed".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "run-fixed"
	}
	return &FixedIDGenerator{id: id}
}

// NewID returns the fixed ID.
func (g *FixedIDGenerator) NewID() string {
	return g.id
}
