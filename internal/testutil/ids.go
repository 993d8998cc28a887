package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator generates predictable ids: prefix-0001, prefix-0002...
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with a fresh SequentialIDGenerator produces
// byte-identical snapshot listings.
//
// Unlike store.FixedGenerator, which panics once its list runs out, this
// generator never exhausts.
//
// Thread-safety: SequentialIDGenerator is safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a new generator.
//
// If prefix is empty, ids look like "snap-0001".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "snap"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id.
//
// Implements store.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
