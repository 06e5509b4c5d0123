package postgres

import (
	"context"
	"fmt"

	"github.com/mikelzubi/mimapa/internal/core/domain"
)

// VisitRepo implements ports.VisitLedger with pgx. The ledger is
// append-only; there is no update or delete path.
type VisitRepo struct {
	db *DB
}

// NewVisitRepo creates a new VisitRepo.
func NewVisitRepo(db *DB) *VisitRepo {
	return &VisitRepo{db: db}
}

// Record appends one visit and returns the stored row.
func (r *VisitRepo) Record(ctx context.Context, draft domain.VisitDraft) (*domain.Visit, error) {
	v := domain.Visit{
		Visited:         draft.Visited,
		Visitor:         draft.Visitor,
		CredentialToken: draft.CredentialToken,
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO visits (visited, visitor, credential_token)
		VALUES ($1, $2, $3)
		RETURNING id, ts
	`, draft.Visited, draft.Visitor, draft.CredentialToken).Scan(&v.ID, &v.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert visit: %w", err)
	}
	return &v, nil
}

// ListByVisited returns every visit received by one owner, oldest first.
func (r *VisitRepo) ListByVisited(ctx context.Context, visited string) ([]domain.Visit, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, visited, visitor, credential_token, ts
		FROM visits WHERE visited = $1
		ORDER BY ts ASC
	`, visited)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []domain.Visit
	for rows.Next() {
		var v domain.Visit
		if err := rows.Scan(&v.ID, &v.Visited, &v.Visitor, &v.CredentialToken, &v.Timestamp); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
