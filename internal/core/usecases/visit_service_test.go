package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/core/usecases"
)

type mockVisitReader struct {
	mockVisitLedger
	listFn func(ctx context.Context, visited string) ([]domain.Visit, error)
}

func (m *mockVisitReader) ListByVisited(ctx context.Context, visited string) ([]domain.Visit, error) {
	if m.listFn != nil {
		return m.listFn(ctx, visited)
	}
	return nil, nil
}

func TestVisitService_ListByVisited(t *testing.T) {
	now := time.Now()
	ledger := &mockVisitReader{
		listFn: func(ctx context.Context, visited string) ([]domain.Visit, error) {
			if visited != "bob@example.com" {
				t.Errorf("unexpected visited %q", visited)
			}
			return []domain.Visit{
				{ID: "v1", Visited: visited, Visitor: "alice@example.com", Timestamp: now.Add(-time.Hour)},
				{ID: "v2", Visited: visited, Visitor: "alice@example.com", Timestamp: now},
			}, nil
		},
	}
	svc := usecases.NewVisitService(ledger)

	visits, err := svc.ListByVisited(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}
	if visits[0].Timestamp.After(visits[1].Timestamp) {
		t.Error("visits not in chronological order")
	}
}

func TestVisitService_EmptyVisited(t *testing.T) {
	svc := usecases.NewVisitService(&mockVisitReader{})
	if _, err := svc.ListByVisited(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty visited")
	}
}
