// Package memory holds in-process adapter implementations.
package memory

import (
	"context"
	"sync"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/pkg/metrics"
)

// Slot is a mutex-guarded single-value marker cache. Set always
// overwrites; last write wins.
type Slot struct {
	mu sync.Mutex
	m  *domain.Marker
}

// NewSlot creates an empty Slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Get returns a copy of the held marker, or nil when empty.
func (s *Slot) Get(ctx context.Context) *domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		metrics.ActiveSlotMisses.Inc()
		return nil
	}
	metrics.ActiveSlotHits.Inc()
	cp := *s.m
	return &cp
}

// Set stores m, replacing any previous value.
func (s *Slot) Set(ctx context.Context, m domain.Marker) {
	s.mu.Lock()
	s.m = &m
	s.mu.Unlock()
}

// Clear empties the slot.
func (s *Slot) Clear(ctx context.Context) {
	s.mu.Lock()
	s.m = nil
	s.mu.Unlock()
}
