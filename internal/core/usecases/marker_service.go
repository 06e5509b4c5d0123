package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/core/ports"
	"github.com/mikelzubi/mimapa/internal/pkg/geospatial"
	"github.com/mikelzubi/mimapa/internal/pkg/metrics"
)

// MarkerService orchestrates the marker workflows: browse-own-map,
// search-other-map (with its visit side effect), create, edit, view and
// delete. It owns the active-marker slot and is the only writer to it.
type MarkerService struct {
	store    ports.MarkerStore
	ledger   ports.VisitLedger
	geocoder ports.GeocodeResolver
	slot     ports.ActiveMarkerCache
	events   ports.EventPublisher // optional

	mu       sync.Mutex
	inFlight map[string]struct{} // marker ids with a save in progress
}

// NewMarkerService creates a new MarkerService. events may be nil.
func NewMarkerService(
	store ports.MarkerStore,
	ledger ports.VisitLedger,
	geocoder ports.GeocodeResolver,
	slot ports.ActiveMarkerCache,
	events ports.EventPublisher,
) *MarkerService {
	return &MarkerService{
		store:    store,
		ledger:   ledger,
		geocoder: geocoder,
		slot:     slot,
		events:   events,
		inFlight: make(map[string]struct{}),
	}
}

// MapResult is the terminal outcome of a map-loading workflow.
type MapResult struct {
	State   domain.State    `json:"state"`
	Markers []domain.Marker `json:"markers"`
	Message string          `json:"message,omitempty"`
}

// SaveResult is the terminal outcome of a create or edit workflow.
type SaveResult struct {
	State   domain.State   `json:"state"`
	Marker  *domain.Marker `json:"marker,omitempty"`
	Message string         `json:"message,omitempty"`
}

// BrowseOwnMap loads the viewer's own markers. It requires an
// authenticated identity; failures surface as a displayable state and
// are never retried automatically.
func (s *MarkerService) BrowseOwnMap(ctx context.Context, viewer domain.Identity) MapResult {
	if viewer.Email == "" {
		return MapResult{State: domain.StateFailed, Message: "sign in to see your map"}
	}

	markers, err := s.store.ListByOwner(ctx, viewer.Email)
	if err != nil {
		slog.Error("browse own map failed", "owner", viewer.Email, "error", err)
		return MapResult{State: domain.StateFailed, Message: "could not load your markers"}
	}
	return MapResult{State: domain.StateLoaded, Markers: markers}
}

// SearchMap loads the target owner's markers on behalf of viewer, which
// may be nil for an unauthenticated search. A visit is recorded exactly
// once per invocation when the viewer is known and differs from the
// target; the recording is best-effort and never gates the marker read.
func (s *MarkerService) SearchMap(ctx context.Context, viewer *domain.Identity, target string) (MapResult, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return MapResult{}, domain.ErrInvalidInput
	}

	// Issued alongside the read; its outcome does not gate display.
	s.recordVisit(ctx, viewer, target)

	markers, err := s.store.ListByOwner(ctx, target)
	if err != nil {
		slog.Error("search map failed", "target", target, "error", err)
		return MapResult{State: domain.StateFailed, Message: "could not load this user's markers"}, nil
	}
	if len(markers) == 0 {
		return MapResult{State: domain.StateEmpty, Message: "no markers found for this user"}, nil
	}
	return MapResult{State: domain.StateLoaded, Markers: markers}, nil
}

// recordVisit applies the recording policy: authenticated viewer,
// viewer != owner, no deduplication. Ledger faults degrade silently.
func (s *MarkerService) recordVisit(ctx context.Context, viewer *domain.Identity, target string) {
	if viewer == nil || viewer.Email == "" || viewer.Email == target {
		return
	}

	v, err := s.ledger.Record(ctx, domain.VisitDraft{
		Visited:         target,
		Visitor:         viewer.Email,
		CredentialToken: viewer.Token,
	})
	if err != nil {
		metrics.VisitRecordFailures.Inc()
		slog.Warn("visit record dropped", "visited", target, "visitor", viewer.Email, "error", err)
		return
	}
	metrics.VisitsRecorded.Inc()

	if s.events != nil {
		if err := s.events.PublishVisit(ctx, v); err != nil {
			slog.Debug("visit event publish failed", "error", err)
		}
	}
}

// Create geocodes place and persists a new marker for owner. The store
// is never called without a successful geocoding result; an empty
// candidate list is a terminal, user-correctable state.
func (s *MarkerService) Create(ctx context.Context, owner domain.Identity, place, imageURL string) (SaveResult, error) {
	if owner.Email == "" {
		return SaveResult{}, domain.ErrInvalidInput
	}

	pt, err := s.geocoder.Resolve(ctx, place)
	if err != nil {
		return s.geocodeOutcome(err)
	}

	draft := domain.MarkerDraft{
		Place:    place,
		Lat:      pt.Lat,
		Lon:      pt.Lon,
		Owner:    owner.Email,
		ImageURL: imageURL,
	}
	if err := draft.Validate(); err != nil {
		return SaveResult{}, err
	}

	m, err := s.store.Create(ctx, draft)
	if err != nil {
		slog.Error("marker create failed", "owner", owner.Email, "error", err)
		return SaveResult{State: domain.StateSaveFailed, Message: "could not save the marker"}, nil
	}
	metrics.MarkersCreated.Inc()
	return SaveResult{State: domain.StateSaved, Marker: m}, nil
}

// Edit updates a marker. Changing the place re-runs the full
// geocode-then-save sequence; an image-only change skips geocoding.
// The active slot is consulted first and updated to the saved value on
// success. Concurrent edits of the same id within this session are
// rejected with domain.ErrEditInFlight.
func (s *MarkerService) Edit(ctx context.Context, viewer domain.Identity, id, place, imageURL string) (SaveResult, error) {
	if id == "" || strings.TrimSpace(place) == "" {
		return SaveResult{}, domain.ErrInvalidInput
	}

	if !s.begin(id) {
		return SaveResult{}, domain.ErrEditInFlight
	}
	defer s.end(id)

	current, err := s.currentMarker(ctx, id)
	if err != nil {
		return SaveResult{}, err
	}
	if current.Owner != viewer.Email {
		return SaveResult{}, domain.ErrForbidden
	}

	var patch domain.MarkerPatch
	if place != current.Place {
		pt, err := s.geocoder.Resolve(ctx, place)
		if err != nil {
			return s.geocodeOutcome(err)
		}
		patch.Place = &place
		patch.Lat = &pt.Lat
		patch.Lon = &pt.Lon
	}
	if imageURL != current.ImageURL {
		patch.ImageURL = &imageURL
	}

	if patch.Empty() {
		s.slot.Set(ctx, *current)
		return SaveResult{State: domain.StateSaved, Marker: current}, nil
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SaveResult{}, err
		}
		slog.Error("marker update failed", "id", id, "error", err)
		return SaveResult{State: domain.StateSaveFailed, Message: "could not save the marker"}, nil
	}

	s.slot.Set(ctx, *updated)
	return SaveResult{State: domain.StateSaved, Marker: updated}, nil
}

// geocodeOutcome maps resolver errors onto workflow states. Local input
// validation surfaces as an error, not a state.
func (s *MarkerService) geocodeOutcome(err error) (SaveResult, error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return SaveResult{}, err
	case errors.Is(err, domain.ErrNoResults):
		return SaveResult{State: domain.StateGeocodeEmpty, Message: "address not found"}, nil
	default:
		slog.Error("geocoding failed", "error", err)
		return SaveResult{State: domain.StateGeocodeFailed, Message: "could not resolve the address"}, nil
	}
}

// View returns a marker, preferring the active slot and falling back to
// the store on absence or id mismatch. A fetched marker repopulates the
// slot for the next screen.
func (s *MarkerService) View(ctx context.Context, id string) (*domain.Marker, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.currentMarker(ctx, id)
}

// Delete removes a marker. Deleting an id that is already gone counts
// as success. On success the slot is cleared if it held the deleted id.
func (s *MarkerService) Delete(ctx context.Context, viewer domain.Identity, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	m, err := s.store.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.dropFromSlot(ctx, id)
		return nil
	}
	if err != nil {
		return err
	}
	if m.Owner != viewer.Email {
		return domain.ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.dropFromSlot(ctx, id)
	metrics.MarkersDeleted.Inc()
	return nil
}

// List exposes the filtered, paginated marker listing for the admin
// surfaces (REST list endpoint, GraphQL).
func (s *MarkerService) List(ctx context.Context, f ports.MarkerFilter) ([]domain.Marker, int, error) {
	return s.store.List(ctx, f)
}

// NearbyMarker pairs a marker with its distance from a query point.
type NearbyMarker struct {
	domain.Marker
	DistanceM float64 `json:"distance_m"`
}

// Nearby returns markers within radiusMeters of a point, closest
// first. The store prefilters with a bounding box; the exact
// great-circle distance decides membership and order.
func (s *MarkerService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]NearbyMarker, error) {
	if radiusMeters <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	candidates, err := s.store.ListInBox(ctx, minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}

	var out []NearbyMarker
	for _, m := range candidates {
		d := geospatial.Haversine(lat, lon, m.Lat, m.Lon)
		if d <= radiusMeters {
			out = append(out, NearbyMarker{Marker: m, DistanceM: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ClearActive empties the slot. Called on logout and when navigating to
// a context where a stale slot would be unsafe (e.g. back to a list).
func (s *MarkerService) ClearActive(ctx context.Context) {
	s.slot.Clear(ctx)
}

func (s *MarkerService) currentMarker(ctx context.Context, id string) (*domain.Marker, error) {
	if m := s.slot.Get(ctx); m != nil && m.ID == id {
		return m, nil
	}
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.slot.Set(ctx, *m)
	return m, nil
}

func (s *MarkerService) dropFromSlot(ctx context.Context, id string) {
	if m := s.slot.Get(ctx); m != nil && m.ID == id {
		s.slot.Clear(ctx)
	}
}

func (s *MarkerService) begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *MarkerService) end(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
