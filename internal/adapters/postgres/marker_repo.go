package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/core/ports"
)

// MarkerRepo implements ports.MarkerStore with pgx.
type MarkerRepo struct {
	db *DB
}

// NewMarkerRepo creates a new MarkerRepo.
func NewMarkerRepo(db *DB) *MarkerRepo {
	return &MarkerRepo{db: db}
}

const markerColumns = `id, place, lat, lon, owner, COALESCE(image_url, ''), created_at, updated_at`

// Create inserts a marker and returns the stored row.
func (r *MarkerRepo) Create(ctx context.Context, draft domain.MarkerDraft) (*domain.Marker, error) {
	var m domain.Marker
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO markers (place, lat, lon, owner, image_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING `+markerColumns+`
	`, draft.Place, draft.Lat, draft.Lon, draft.Owner, draft.ImageURL).Scan(
		&m.ID, &m.Place, &m.Lat, &m.Lon, &m.Owner, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert marker: %w", err)
	}
	return &m, nil
}

// GetByID returns a marker by UUID.
func (r *MarkerRepo) GetByID(ctx context.Context, id string) (*domain.Marker, error) {
	var m domain.Marker
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+markerColumns+`
		FROM markers WHERE id = $1
	`, id).Scan(
		&m.ID, &m.Place, &m.Lat, &m.Lon, &m.Owner, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByOwner returns all markers for one owner, newest first.
func (r *MarkerRepo) ListByOwner(ctx context.Context, owner string) ([]domain.Marker, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+markerColumns+`
		FROM markers WHERE owner = $1
		ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMarkers(rows)
}

// List returns a filtered page of markers plus the unpaged total.
func (r *MarkerRepo) List(ctx context.Context, f ports.MarkerFilter) ([]domain.Marker, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if f.Owner != "" {
		args = append(args, f.Owner)
		where = append(where, fmt.Sprintf("owner = $%d", len(args)))
	}
	if f.Place != "" {
		args = append(args, "%"+f.Place+"%")
		where = append(where, fmt.Sprintf("place ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM markers WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM markers WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, markerColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	markers, err := scanMarkers(rows)
	return markers, total, err
}

// ListInBox returns markers inside a lat/lon bounding box.
func (r *MarkerRepo) ListInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Marker, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+markerColumns+`
		FROM markers
		WHERE lat BETWEEN $1 AND $3
		  AND lon BETWEEN $2 AND $4
	`, minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMarkers(rows)
}

// Update applies a partial patch and returns the updated row.
func (r *MarkerRepo) Update(ctx context.Context, id string, patch domain.MarkerPatch) (*domain.Marker, error) {
	set := []string{"updated_at = now()"}
	args := []any{}
	if patch.Place != nil {
		args = append(args, *patch.Place)
		set = append(set, fmt.Sprintf("place = $%d", len(args)))
	}
	if patch.Lat != nil {
		args = append(args, *patch.Lat)
		set = append(set, fmt.Sprintf("lat = $%d", len(args)))
	}
	if patch.Lon != nil {
		args = append(args, *patch.Lon)
		set = append(set, fmt.Sprintf("lon = $%d", len(args)))
	}
	if patch.ImageURL != nil {
		args = append(args, *patch.ImageURL)
		set = append(set, fmt.Sprintf("image_url = NULLIF($%d, '')", len(args)))
	}
	args = append(args, id)

	var m domain.Marker
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE markers SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(set, ", "), len(args), markerColumns), args...).Scan(
		&m.ID, &m.Place, &m.Lat, &m.Lon, &m.Owner, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update marker: %w", err)
	}
	return &m, nil
}

// Delete removes a marker by UUID.
func (r *MarkerRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM markers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete marker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMarkers(rows pgx.Rows) ([]domain.Marker, error) {
	var markers []domain.Marker
	for rows.Next() {
		var m domain.Marker
		if err := rows.Scan(
			&m.ID, &m.Place, &m.Lat, &m.Lon, &m.Owner, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}
