package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type contentRepo struct {
	db *sql.DB
}

func (r *contentRepo) PutContent(ctx context.Context, meta ContentMetadata) error {
	if meta.ID == "" {
		return fmt.Errorf("content id is required")
	}
	switch meta.Kind {
	case ContentKindText, ContentKindDocument:
	default:
		return fmt.Errorf("unknown content kind %q", meta.Kind)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO contents (id, kind, location, title, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET kind = excluded.kind, location = excluded.location,
		title = excluded.title`,
		meta.ID, meta.Kind, meta.Location, meta.Title, meta.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save content %s: %w", meta.ID, err)
	}
	return nil
}

func (r *contentRepo) GetContentMetadata(ctx context.Context, id string) (*ContentMetadata, error) {
	var m ContentMetadata
	err := r.db.QueryRowContext(ctx,
		`SELECT id, kind, location, title, created_at FROM contents WHERE id = ?`, id,
	).Scan(&m.ID, &m.Kind, &m.Location, &m.Title, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", id, err)
	}
	return &m, nil
}

func (r *contentRepo) ListContent(ctx context.Context) ([]ContentMetadata, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, location, title, created_at FROM contents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var out []ContentMetadata
	for rows.Next() {
		var m ContentMetadata
		if err := rows.Scan(&m.ID, &m.Kind, &m.Location, &m.Title, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
