package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikelzubi/mimapa/internal/core/domain"
)

func TestResolve_FirstCandidateWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Paris" {
			t.Errorf("unexpected query %q", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France"},
			{"lat":"33.6609","lon":"-95.5555","display_name":"Paris, Texas"}
		]`))
	}))
	defer srv.Close()

	r := New(srv.URL, "mimapa-test", time.Second)
	pt, err := r.Resolve(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.Lat != 48.8566 || pt.Lon != 2.3522 {
		t.Errorf("got %v, want first candidate 48.8566,2.3522", pt)
	}
}

func TestResolve_EmptyCandidateList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	r := New(srv.URL, "mimapa-test", time.Second)
	_, err := r.Resolve(context.Background(), "Nowhereville123")
	if !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestResolve_BlankInputSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	r := New(srv.URL, "mimapa-test", time.Second)
	_, err := r.Resolve(context.Background(), "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Error("blank input must not reach the provider")
	}
}

func TestResolve_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := New(srv.URL, "mimapa-test", time.Second)
	_, err := r.Resolve(context.Background(), "Paris")
	var resErr *domain.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolve_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"2.3522"}]`))
	}))
	defer srv.Close()

	r := New(srv.URL, "mimapa-test", time.Second)
	_, err := r.Resolve(context.Background(), "Paris")
	var resErr *domain.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}
