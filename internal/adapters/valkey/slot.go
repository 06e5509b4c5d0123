// Package valkey backs the active-marker slot with a Valkey
// (Redis-compatible) server, so the handoff survives process restarts
// and is shared between replicas.
package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/pkg/metrics"
)

const slotKey = "mimapa:active-marker"

// Slot implements ports.ActiveMarkerCache on a single Valkey key.
// Faults are swallowed: a broken cache degrades to a miss, never an
// error surfaced to the workflow.
type Slot struct {
	client valkey.Client
	ttl    time.Duration
}

// NewSlot creates a Valkey-backed slot. ttl <= 0 means no expiry.
func NewSlot(addr string, ttl time.Duration) (*Slot, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Slot{client: client, ttl: ttl}, nil
}

// Get returns the held marker, or nil when empty or unreadable.
func (s *Slot) Get(ctx context.Context) *domain.Marker {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(slotKey).Build())
	if err := cmd.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("active slot read failed", "error", err)
		}
		metrics.ActiveSlotMisses.Inc()
		return nil
	}
	b, err := cmd.AsBytes()
	if err != nil {
		metrics.ActiveSlotMisses.Inc()
		return nil
	}

	var m domain.Marker
	if err := json.Unmarshal(b, &m); err != nil {
		slog.Warn("active slot held garbage, dropping", "error", err)
		s.Clear(ctx)
		metrics.ActiveSlotMisses.Inc()
		return nil
	}
	metrics.ActiveSlotHits.Inc()
	return &m
}

// Set stores m, replacing any previous value. Last write wins.
func (s *Slot) Set(ctx context.Context, m domain.Marker) {
	b, err := json.Marshal(m)
	if err != nil {
		slog.Warn("active slot encode failed", "error", err)
		return
	}

	builder := s.client.B().Set().Key(slotKey).Value(string(b))
	var cmd valkey.Completed
	if s.ttl > 0 {
		cmd = builder.Ex(s.ttl).Build()
	} else {
		cmd = builder.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		slog.Warn("active slot write failed", "error", err)
	}
}

// Clear empties the slot.
func (s *Slot) Clear(ctx context.Context) {
	if err := s.client.Do(ctx, s.client.B().Del().Key(slotKey).Build()).Error(); err != nil {
		slog.Warn("active slot clear failed", "error", err)
	}
}

// Ping checks connectivity, used by the readiness probe.
func (s *Slot) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *Slot) Close() {
	s.client.Close()
}
