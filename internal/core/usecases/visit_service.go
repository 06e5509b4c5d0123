package usecases

import (
	"context"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/core/ports"
)

// VisitService is the read path over the visit ledger. Recording happens
// inside the search workflow; this service only exposes the audit view.
type VisitService struct {
	ledger ports.VisitLedger
}

// NewVisitService creates a new VisitService.
func NewVisitService(ledger ports.VisitLedger) *VisitService {
	return &VisitService{ledger: ledger}
}

// ListByVisited returns all visits received by an owner, oldest first.
func (s *VisitService) ListByVisited(ctx context.Context, visited string) ([]domain.Visit, error) {
	if visited == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.ledger.ListByVisited(ctx, visited)
}
