package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository keeps the most recent search texts per workspace
type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Record moves entry.Text to the front of the history and drops everything
// past the newest keep entries.
func (r *HistoryRepository) Record(ctx context.Context, entry *domain.HistoryEntry, keep int) error {
	usedAt := entry.UsedAt
	if usedAt.IsZero() {
		usedAt = time.Now().UTC()
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO search_history (workspace_id, text, used_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (workspace_id, text) DO UPDATE SET used_at = EXCLUDED.used_at`,
			entry.WorkspaceID, entry.Text, usedAt,
		); err != nil {
			return err
		}

		_, err := tx.Exec(ctx,
			`DELETE FROM search_history
			 WHERE workspace_id = $1
			   AND text NOT IN (
			       SELECT text FROM search_history
			       WHERE workspace_id = $1
			       ORDER BY used_at DESC
			       LIMIT $2
			   )`,
			entry.WorkspaceID, keep,
		)
		return err
	})
}

func (r *HistoryRepository) List(ctx context.Context, workspaceID string, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = domain.MaxHistoryEntries
	}

	rows, err := r.pool.Query(ctx,
		`SELECT workspace_id, text, used_at
		 FROM search_history
		 WHERE workspace_id = $1
		 ORDER BY used_at DESC
		 LIMIT $2`,
		workspaceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.WorkspaceID, &e.Text, &e.UsedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *HistoryRepository) Clear(ctx context.Context, workspaceID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM search_history WHERE workspace_id = $1`, workspaceID)
	return err
}
