package search

import (
	"context"
	"sync"
)

// Sequencer hands out increasing sequence numbers per scope so that only the
// most recently issued search in a scope is applied.
type Sequencer interface {
	Next(ctx context.Context, scope string) (uint64, error)
	IsLatest(ctx context.Context, scope string, seq uint64) (bool, error)
}

// MemorySequencer keeps counters in process. Counters are lost on restart and
// are not shared between replicas.
type MemorySequencer struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{seqs: make(map[string]uint64)}
}

func (m *MemorySequencer) Next(_ context.Context, scope string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seqs[scope]++
	return m.seqs[scope], nil
}

func (m *MemorySequencer) IsLatest(_ context.Context, scope string, seq uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.seqs[scope] == seq, nil
}
