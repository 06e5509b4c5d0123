package ports

import (
	"context"

	"github.com/mikelzubi/mimapa/internal/core/domain"
)

// MarkerFilter narrows a marker listing. Zero values mean "no filter".
type MarkerFilter struct {
	Owner  string // exact owner email
	Place  string // substring match on the place name
	Offset int
	Limit  int
}

// MarkerStore is the system of record for markers.
type MarkerStore interface {
	Create(ctx context.Context, draft domain.MarkerDraft) (*domain.Marker, error)
	GetByID(ctx context.Context, id string) (*domain.Marker, error)
	// ListByOwner returns the owner's markers in no guaranteed order.
	ListByOwner(ctx context.Context, owner string) ([]domain.Marker, error)
	// List applies the filter and also reports the total match count
	// before pagination.
	List(ctx context.Context, f MarkerFilter) ([]domain.Marker, int, error)
	// ListInBox returns markers inside a lat/lon bounding box,
	// uncapped and unordered; callers refine by true distance.
	ListInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Marker, error)
	Update(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error)
	// Delete removes a marker. Deleting an unknown id yields
	// domain.ErrNotFound; the orchestrator maps that to success.
	Delete(ctx context.Context, id string) error
}

// VisitLedger is the append-only system of record for visits.
type VisitLedger interface {
	Record(ctx context.Context, draft domain.VisitDraft) (*domain.Visit, error)
	// ListByVisited returns visits ordered by timestamp ascending for
	// stable display.
	ListByVisited(ctx context.Context, visited string) ([]domain.Visit, error)
}
