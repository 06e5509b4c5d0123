package ports

import (
	"context"
	"io"

	"github.com/mikelzubi/mimapa/internal/core/domain"
)

// GeocodeResolver turns free-text place names into coordinates.
// It returns domain.ErrInvalidInput for empty text (rejected locally),
// domain.ErrNoResults for a confirmed empty candidate list, and a
// *domain.ResolutionError for transport or parse failures.
type GeocodeResolver interface {
	Resolve(ctx context.Context, place string) (domain.GeoPoint, error)
}

// ActiveMarkerCache is the single-slot, cross-screen handoff of the
// currently active marker. It is a hint, never a source of truth:
// implementations swallow their own faults and report an empty slot
// instead, and readers must bypass the slot on an id mismatch.
type ActiveMarkerCache interface {
	Get(ctx context.Context) *domain.Marker
	Set(ctx context.Context, m domain.Marker)
	Clear(ctx context.Context)
}

// MediaStore uploads binary content and returns a durable URL.
type MediaStore interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// EventPublisher broadcasts domain events to a message broker.
type EventPublisher interface {
	PublishVisit(ctx context.Context, v *domain.Visit) error
}
