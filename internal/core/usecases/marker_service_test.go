package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/core/ports"
	"github.com/mikelzubi/mimapa/internal/core/usecases"
)

// --- Mock MarkerStore ---

type mockMarkerStore struct {
	createFn      func(ctx context.Context, draft domain.MarkerDraft) (*domain.Marker, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Marker, error)
	listByOwnerFn func(ctx context.Context, owner string) ([]domain.Marker, error)
	listInBoxFn   func(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Marker, error)
	updateFn      func(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error)
	deleteFn      func(ctx context.Context, id string) error

	createCalls int
	getCalls    int
	updateCalls int
	deleteCalls int
}

func (m *mockMarkerStore) Create(ctx context.Context, draft domain.MarkerDraft) (*domain.Marker, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, draft)
	}
	return nil, nil
}

func (m *mockMarkerStore) GetByID(ctx context.Context, id string) (*domain.Marker, error) {
	m.getCalls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMarkerStore) ListByOwner(ctx context.Context, owner string) ([]domain.Marker, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, owner)
	}
	return nil, nil
}

func (m *mockMarkerStore) List(ctx context.Context, f ports.MarkerFilter) ([]domain.Marker, int, error) {
	return nil, 0, nil
}

func (m *mockMarkerStore) ListInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Marker, error) {
	if m.listInBoxFn != nil {
		return m.listInBoxFn(ctx, minLat, minLon, maxLat, maxLon)
	}
	return nil, nil
}

func (m *mockMarkerStore) Update(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error) {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockMarkerStore) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock VisitLedger ---

type mockVisitLedger struct {
	recordFn func(ctx context.Context, draft domain.VisitDraft) (*domain.Visit, error)
	recorded []domain.VisitDraft
}

func (m *mockVisitLedger) Record(ctx context.Context, draft domain.VisitDraft) (*domain.Visit, error) {
	m.recorded = append(m.recorded, draft)
	if m.recordFn != nil {
		return m.recordFn(ctx, draft)
	}
	return &domain.Visit{ID: "v1", Visited: draft.Visited, Visitor: draft.Visitor}, nil
}

func (m *mockVisitLedger) ListByVisited(ctx context.Context, visited string) ([]domain.Visit, error) {
	return nil, nil
}

// --- Mock GeocodeResolver ---

type mockGeocoder struct {
	resolveFn func(ctx context.Context, place string) (domain.GeoPoint, error)
	calls     int
}

func (m *mockGeocoder) Resolve(ctx context.Context, place string) (domain.GeoPoint, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, place)
	}
	return domain.GeoPoint{}, domain.ErrNoResults
}

// --- Stub slot (single value, no locking needed in tests) ---

type stubSlot struct {
	m *domain.Marker
}

func (s *stubSlot) Get(ctx context.Context) *domain.Marker {
	if s.m == nil {
		return nil
	}
	cp := *s.m
	return &cp
}

func (s *stubSlot) Set(ctx context.Context, m domain.Marker) { s.m = &m }
func (s *stubSlot) Clear(ctx context.Context)                { s.m = nil }

func newService(store *mockMarkerStore, ledger *mockVisitLedger, geo *mockGeocoder, slot *stubSlot) *usecases.MarkerService {
	return usecases.NewMarkerService(store, ledger, geo, slot, nil)
}

// --- Create ---

func TestCreate_UsesFirstCandidateCoordinates(t *testing.T) {
	geo := &mockGeocoder{
		resolveFn: func(ctx context.Context, place string) (domain.GeoPoint, error) {
			return domain.GeoPoint{Lat: 48.8566, Lon: 2.3522}, nil
		},
	}
	store := &mockMarkerStore{
		createFn: func(ctx context.Context, draft domain.MarkerDraft) (*domain.Marker, error) {
			if draft.Lat != 48.8566 || draft.Lon != 2.3522 {
				t.Errorf("draft coords %v,%v do not match geocode result", draft.Lat, draft.Lon)
			}
			if draft.Owner != "alice@example.com" {
				t.Errorf("unexpected owner %q", draft.Owner)
			}
			return &domain.Marker{ID: "m1", Place: draft.Place, Lat: draft.Lat, Lon: draft.Lon, Owner: draft.Owner}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, geo, &stubSlot{})

	res, err := svc.Create(context.Background(), domain.Identity{Email: "alice@example.com"}, "Paris", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateSaved {
		t.Fatalf("expected saved, got %s (%s)", res.State, res.Message)
	}
	if res.Marker == nil || res.Marker.ID != "m1" {
		t.Errorf("expected created marker in result, got %+v", res.Marker)
	}
}

func TestCreate_GeocodeEmpty_NeverCallsStore(t *testing.T) {
	geo := &mockGeocoder{
		resolveFn: func(ctx context.Context, place string) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, domain.ErrNoResults
		},
	}
	store := &mockMarkerStore{}
	svc := newService(store, &mockVisitLedger{}, geo, &stubSlot{})

	res, err := svc.Create(context.Background(), domain.Identity{Email: "alice@example.com"}, "Nowhereville123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateGeocodeEmpty {
		t.Fatalf("expected geocode_empty, got %s", res.State)
	}
	if store.createCalls != 0 {
		t.Errorf("store.Create called %d times, want 0", store.createCalls)
	}
}

func TestCreate_GeocodeTransportFailure(t *testing.T) {
	geo := &mockGeocoder{
		resolveFn: func(ctx context.Context, place string) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, &domain.ResolutionError{Op: "search", Err: fmt.Errorf("connection refused")}
		},
	}
	store := &mockMarkerStore{}
	svc := newService(store, &mockVisitLedger{}, geo, &stubSlot{})

	res, err := svc.Create(context.Background(), domain.Identity{Email: "a@b.c"}, "Paris", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateGeocodeFailed {
		t.Fatalf("expected geocode_failed, got %s", res.State)
	}
	if store.createCalls != 0 {
		t.Errorf("store must not be called on geocode failure")
	}
}

func TestCreate_EmptyPlace_RejectedLocally(t *testing.T) {
	geo := &mockGeocoder{
		resolveFn: func(ctx context.Context, place string) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, domain.ErrInvalidInput
		},
	}
	svc := newService(&mockMarkerStore{}, &mockVisitLedger{}, geo, &stubSlot{})

	_, err := svc.Create(context.Background(), domain.Identity{Email: "a@b.c"}, "", "")
	if err == nil {
		t.Fatal("expected error for empty place")
	}
}

// --- Search & visit policy ---

func TestSearchMap_RecordsVisitForDifferentIdentity(t *testing.T) {
	ledger := &mockVisitLedger{}
	store := &mockMarkerStore{
		listByOwnerFn: func(ctx context.Context, owner string) ([]domain.Marker, error) {
			return []domain.Marker{{ID: "m1", Place: "Paris", Lat: 48.8566, Lon: 2.3522, Owner: owner}}, nil
		},
	}
	svc := newService(store, ledger, &mockGeocoder{}, &stubSlot{})

	viewer := &domain.Identity{Email: "alice@example.com", Token: "tok-123"}
	res, err := svc.SearchMap(context.Background(), viewer, "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateLoaded {
		t.Fatalf("expected loaded, got %s", res.State)
	}
	if len(res.Markers) != 1 || res.Markers[0].Place != "Paris" {
		t.Errorf("unexpected markers: %+v", res.Markers)
	}
	if len(ledger.recorded) != 1 {
		t.Fatalf("expected exactly 1 visit, got %d", len(ledger.recorded))
	}
	v := ledger.recorded[0]
	if v.Visited != "bob@example.com" || v.Visitor != "alice@example.com" {
		t.Errorf("unexpected visit draft: %+v", v)
	}
	if v.CredentialToken != "tok-123" {
		t.Errorf("credential token not carried verbatim: %q", v.CredentialToken)
	}
}

func TestSearchMap_SelfViewRecordsNothing(t *testing.T) {
	ledger := &mockVisitLedger{}
	svc := newService(&mockMarkerStore{}, ledger, &mockGeocoder{}, &stubSlot{})

	viewer := &domain.Identity{Email: "bob@example.com"}
	if _, err := svc.SearchMap(context.Background(), viewer, "bob@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ledger.recorded) != 0 {
		t.Errorf("self-view recorded %d visits, want 0", len(ledger.recorded))
	}
}

func TestSearchMap_UnauthenticatedRecordsNothing(t *testing.T) {
	ledger := &mockVisitLedger{}
	store := &mockMarkerStore{
		listByOwnerFn: func(ctx context.Context, owner string) ([]domain.Marker, error) {
			return []domain.Marker{{ID: "m1", Owner: owner}}, nil
		},
	}
	svc := newService(store, ledger, &mockGeocoder{}, &stubSlot{})

	res, err := svc.SearchMap(context.Background(), nil, "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateLoaded {
		t.Fatalf("markers must load without an identity, got %s", res.State)
	}
	if len(ledger.recorded) != 0 {
		t.Errorf("unauthenticated search recorded %d visits, want 0", len(ledger.recorded))
	}
}

func TestSearchMap_LedgerFaultDoesNotBlockBrowsing(t *testing.T) {
	ledger := &mockVisitLedger{
		recordFn: func(ctx context.Context, draft domain.VisitDraft) (*domain.Visit, error) {
			return nil, fmt.Errorf("ledger down")
		},
	}
	store := &mockMarkerStore{
		listByOwnerFn: func(ctx context.Context, owner string) ([]domain.Marker, error) {
			return []domain.Marker{{ID: "m1", Owner: owner}}, nil
		},
	}
	svc := newService(store, ledger, &mockGeocoder{}, &stubSlot{})

	res, err := svc.SearchMap(context.Background(), &domain.Identity{Email: "alice@example.com"}, "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateLoaded {
		t.Fatalf("ledger fault blocked browsing: %s", res.State)
	}
}

func TestSearchMap_EmptyResult(t *testing.T) {
	svc := newService(&mockMarkerStore{}, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	res, err := svc.SearchMap(context.Background(), nil, "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateEmpty {
		t.Fatalf("expected empty, got %s", res.State)
	}
}

func TestSearchMap_BlankTarget(t *testing.T) {
	svc := newService(&mockMarkerStore{}, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	if _, err := svc.SearchMap(context.Background(), nil, "   "); err == nil {
		t.Fatal("expected error for blank target")
	}
}

// --- Browse ---

func TestBrowseOwnMap_RequiresIdentity(t *testing.T) {
	svc := newService(&mockMarkerStore{}, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	res := svc.BrowseOwnMap(context.Background(), domain.Identity{})
	if res.State != domain.StateFailed {
		t.Fatalf("expected failed without identity, got %s", res.State)
	}
}

// --- Edit ---

func TestEdit_PlaceChangeRegeocodesAndUpdatesSlot(t *testing.T) {
	existing := domain.Marker{ID: "m1", Place: "Paris", Lat: 48.8566, Lon: 2.3522, Owner: "alice@example.com"}
	geo := &mockGeocoder{
		resolveFn: func(ctx context.Context, place string) (domain.GeoPoint, error) {
			return domain.GeoPoint{Lat: 40.4168, Lon: -3.7038}, nil
		},
	}
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			cp := existing
			return &cp, nil
		},
		updateFn: func(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error) {
			if patch.Place == nil || patch.Lat == nil || patch.Lon == nil {
				t.Fatal("place change must carry fresh coordinates")
			}
			updated := existing
			updated.Place = *patch.Place
			updated.Lat = *patch.Lat
			updated.Lon = *patch.Lon
			return &updated, nil
		},
	}
	slot := &stubSlot{}
	svc := newService(store, &mockVisitLedger{}, geo, slot)

	res, err := svc.Edit(context.Background(), domain.Identity{Email: "alice@example.com"}, "m1", "Madrid", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateSaved {
		t.Fatalf("expected saved, got %s (%s)", res.State, res.Message)
	}

	cached := slot.Get(context.Background())
	if cached == nil || cached.ID != "m1" {
		t.Fatal("slot not populated after save")
	}
	if cached.Place != "Madrid" || cached.Lat != 40.4168 || cached.Lon != -3.7038 {
		t.Errorf("slot holds stale values: %+v", cached)
	}
}

func TestEdit_ImageOnlyChangeSkipsGeocoding(t *testing.T) {
	existing := domain.Marker{ID: "m1", Place: "Paris", Lat: 48.8566, Lon: 2.3522, Owner: "alice@example.com"}
	geo := &mockGeocoder{}
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			cp := existing
			return &cp, nil
		},
		updateFn: func(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error) {
			if patch.Place != nil || patch.Lat != nil || patch.Lon != nil {
				t.Fatal("image-only edit must not touch place or coordinates")
			}
			updated := existing
			updated.ImageURL = *patch.ImageURL
			return &updated, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, geo, &stubSlot{})

	res, err := svc.Edit(context.Background(), domain.Identity{Email: "alice@example.com"}, "m1", "Paris", "https://img.example/eiffel.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != domain.StateSaved {
		t.Fatalf("expected saved, got %s", res.State)
	}
	if geo.calls != 0 {
		t.Errorf("geocoder called %d times for image-only edit, want 0", geo.calls)
	}
}

func TestEdit_NonOwnerForbidden(t *testing.T) {
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			return &domain.Marker{ID: id, Place: "Paris", Owner: "alice@example.com"}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	_, err := svc.Edit(context.Background(), domain.Identity{Email: "mallory@example.com"}, "m1", "Paris", "x")
	if err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.updateCalls != 0 {
		t.Error("update must not run for a non-owner")
	}
}

func TestEdit_SecondEditSameIDRejected(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{})
	var enteredOnce sync.Once
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			return &domain.Marker{ID: id, Place: "Paris", Owner: "a@b.c"}, nil
		},
		updateFn: func(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error) {
			enteredOnce.Do(func() { close(entered) })
			<-block
			return &domain.Marker{ID: id, Place: "Paris", Owner: "a@b.c"}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Edit(context.Background(), domain.Identity{Email: "a@b.c"}, "m1", "Paris", "new.jpg")
		done <- err
	}()
	<-entered

	_, err := svc.Edit(context.Background(), domain.Identity{Email: "a@b.c"}, "m1", "Paris", "other.jpg")
	if err != domain.ErrEditInFlight {
		t.Errorf("expected ErrEditInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first edit failed: %v", err)
	}

	// The guard releases once the first save finishes.
	if _, err := svc.Edit(context.Background(), domain.Identity{Email: "a@b.c"}, "m1", "Paris", "third.jpg"); err != nil {
		t.Errorf("edit after completion rejected: %v", err)
	}
}

// --- View ---

func TestView_PrefersSlot(t *testing.T) {
	slot := &stubSlot{}
	slot.Set(context.Background(), domain.Marker{ID: "m1", Place: "Paris"})
	store := &mockMarkerStore{}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, slot)

	m, err := svc.View(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Place != "Paris" {
		t.Errorf("unexpected marker: %+v", m)
	}
	if store.getCalls != 0 {
		t.Errorf("store fetched %d times despite slot hit, want 0", store.getCalls)
	}
}

func TestView_IDMismatchBypassesSlot(t *testing.T) {
	slot := &stubSlot{}
	slot.Set(context.Background(), domain.Marker{ID: "other", Place: "Lisboa"})
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			return &domain.Marker{ID: id, Place: "Paris"}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, slot)

	m, err := svc.View(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Place == "Lisboa" {
		t.Fatal("stale slot value displayed for mismatched id")
	}
	if store.getCalls != 1 {
		t.Errorf("expected exactly one fetch, got %d", store.getCalls)
	}
	if cached := slot.Get(context.Background()); cached == nil || cached.ID != "m1" {
		t.Error("slot not repopulated with fetched marker")
	}
}

// --- Nearby ---

func TestNearby_OrdersByDistanceAndDropsOutOfRange(t *testing.T) {
	store := &mockMarkerStore{
		listInBoxFn: func(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Marker, error) {
			// Bounding-box corners overshoot; true distance filters them.
			return []domain.Marker{
				{ID: "far", Lat: 48.90, Lon: 2.30},   // ~5 km away
				{ID: "near", Lat: 48.857, Lon: 2.353}, // ~80 m away
				{ID: "mid", Lat: 48.860, Lon: 2.360},  // ~700 m away
			}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	got, err := svc.Nearby(context.Background(), 48.8566, 2.3522, 1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 markers in range, got %d", len(got))
	}
	if got[0].ID != "near" || got[1].ID != "mid" {
		t.Errorf("not ordered by distance: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].DistanceM <= 0 || got[0].DistanceM >= got[1].DistanceM {
		t.Errorf("distances look wrong: %f, %f", got[0].DistanceM, got[1].DistanceM)
	}
}

func TestNearby_RejectsNonPositiveRadius(t *testing.T) {
	svc := newService(&mockMarkerStore{}, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})
	if _, err := svc.Nearby(context.Background(), 0, 0, 0, 10); err == nil {
		t.Fatal("expected error for zero radius")
	}
}

// --- Delete ---

func TestDelete_TwiceIsSuccess(t *testing.T) {
	deleted := false
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			if deleted {
				return nil, domain.ErrNotFound
			}
			return &domain.Marker{ID: id, Owner: "alice@example.com"}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})
	viewer := domain.Identity{Email: "alice@example.com"}

	if err := svc.Delete(context.Background(), viewer, "m1"); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), viewer, "m1"); err != nil {
		t.Fatalf("second delete not idempotent: %v", err)
	}
}

func TestDelete_ClearsSlotWhenItHeldTheMarker(t *testing.T) {
	slot := &stubSlot{}
	slot.Set(context.Background(), domain.Marker{ID: "m1", Owner: "alice@example.com"})
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			return &domain.Marker{ID: id, Owner: "alice@example.com"}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, slot)

	if err := svc.Delete(context.Background(), domain.Identity{Email: "alice@example.com"}, "m1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if slot.Get(context.Background()) != nil {
		t.Error("slot still holds the deleted marker")
	}
}

func TestDelete_KeepsSlotForOtherMarker(t *testing.T) {
	slot := &stubSlot{}
	slot.Set(context.Background(), domain.Marker{ID: "other", Owner: "alice@example.com"})
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			return &domain.Marker{ID: id, Owner: "alice@example.com"}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, slot)

	if err := svc.Delete(context.Background(), domain.Identity{Email: "alice@example.com"}, "m1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if slot.Get(context.Background()) == nil {
		t.Error("slot for an unrelated marker was cleared")
	}
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	store := &mockMarkerStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.Marker, error) {
			return &domain.Marker{ID: id, Owner: "alice@example.com"}, nil
		},
	}
	svc := newService(store, &mockVisitLedger{}, &mockGeocoder{}, &stubSlot{})

	err := svc.Delete(context.Background(), domain.Identity{Email: "mallory@example.com"}, "m1")
	if err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.deleteCalls != 0 {
		t.Error("delete must not run for a non-owner")
	}
}
