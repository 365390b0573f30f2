package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/pagination"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SavedSearchRepository struct {
	pool *pgxpool.Pool
}

func NewSavedSearchRepository(pool *pgxpool.Pool) *SavedSearchRepository {
	return &SavedSearchRepository{pool: pool}
}

func scanSavedSearch(row pgx.Row) (*domain.SavedSearch, error) {
	var s domain.SavedSearch
	var filterJSON []byte
	if err := row.Scan(&s.ID, &s.WorkspaceID, &s.Name, &filterJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filterJSON, &s.Filter); err != nil {
		return nil, fmt.Errorf("decode filter of saved search %s: %w", s.ID, err)
	}
	return &s, nil
}

// Upsert keeps the original ID and created_at when the name already exists
func (r *SavedSearchRepository) Upsert(ctx context.Context, s *domain.SavedSearch) (*domain.SavedSearch, error) {
	filterJSON, err := json.Marshal(s.Filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	saved, err := scanSavedSearch(r.pool.QueryRow(ctx,
		`INSERT INTO saved_searches (id, workspace_id, name, filter, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (workspace_id, name)
		 DO UPDATE SET filter = EXCLUDED.filter, updated_at = EXCLUDED.updated_at
		 RETURNING id, workspace_id, name, filter, created_at, updated_at`,
		s.ID, s.WorkspaceID, s.Name, filterJSON, s.CreatedAt, s.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *SavedSearchRepository) GetByName(ctx context.Context, workspaceID, name string) (*domain.SavedSearch, error) {
	s, err := scanSavedSearch(r.pool.QueryRow(ctx,
		`SELECT id, workspace_id, name, filter, created_at, updated_at
		 FROM saved_searches WHERE workspace_id = $1 AND name = $2`,
		workspaceID, name,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSavedSearchNotFound
	}
	return s, err
}

func (r *SavedSearchRepository) ListByWorkspaceWithCursor(ctx context.Context, workspaceID string, cursor *pagination.Cursor, limit int) (*service.SavedSearchPageResult, error) {
	limit = pagination.ClampLimit(limit)

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, workspace_id, name, filter, created_at, updated_at
			 FROM saved_searches
			 WHERE workspace_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			workspaceID, cursor.CreatedAt, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, workspace_id, name, filter, created_at, updated_at
			 FROM saved_searches
			 WHERE workspace_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			workspaceID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.SavedSearch
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := pagination.Paginate(items, limit, func(s *domain.SavedSearch) (string, time.Time) {
		return s.ID, s.CreatedAt
	})
	return &page, nil
}

func (r *SavedSearchRepository) DeleteByName(ctx context.Context, workspaceID, name string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM saved_searches WHERE workspace_id = $1 AND name = $2`,
		workspaceID, name,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSavedSearchNotFound
	}
	return nil
}
