package store

import (
	"context"
	"database/sql"
	"fmt"
)

type setRepo struct {
	db *sql.DB
}

func (r *setRepo) GetSet(ctx context.Context, key string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT member FROM set_members WHERE set_key = ? ORDER BY member`, key)
	if err != nil {
		return nil, fmt.Errorf("get set %s: %w", key, err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan set member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *setRepo) PutSet(ctx context.Context, key string, values []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM set_members WHERE set_key = ?`, key); err != nil {
		return fmt.Errorf("clear set %s: %w", key, err)
	}
	for _, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO set_members (set_key, member) VALUES (?, ?)`, key, v); err != nil {
			return fmt.Errorf("insert set member: %w", err)
		}
	}
	return tx.Commit()
}

// AddToSet inserts members without touching the existing ones.
func (r *setRepo) AddToSet(ctx context.Context, key string, values ...string) error {
	for _, v := range values {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO set_members (set_key, member) VALUES (?, ?)`, key, v); err != nil {
			return fmt.Errorf("insert set member: %w", err)
		}
	}
	return nil
}
