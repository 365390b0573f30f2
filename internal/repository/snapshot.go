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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SnapshotRepository struct {
	db dbtx
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: pool}
}

func NewSnapshotRepositoryWithTx(tx pgx.Tx) *SnapshotRepository {
	return &SnapshotRepository{db: tx}
}

func (r *SnapshotRepository) Create(ctx context.Context, s *domain.Snapshot) error {
	records := s.Records
	if records == nil {
		records = []domain.StorageRecord{}
	}
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO snapshots (id, workspace_id, name, source_url, records, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.WorkspaceID, s.Name, nullableString(s.SourceURL), recordsJSON, s.CreatedAt,
	)
	return err
}

func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	var sourceURL pgtype.Text
	var recordsJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, workspace_id, name, source_url, records, created_at
		 FROM snapshots WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.WorkspaceID, &s.Name, &sourceURL, &recordsJSON, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(recordsJSON, &s.Records); err != nil {
		return nil, fmt.Errorf("decode records of snapshot %s: %w", id, err)
	}
	if sourceURL.Valid {
		s.SourceURL = sourceURL.String
	}
	s.RecordCount = len(s.Records)
	return &s, nil
}

// ListByWorkspaceWithCursor lists snapshot headers newest first; Records is
// left empty and RecordCount carries the size.
func (r *SnapshotRepository) ListByWorkspaceWithCursor(ctx context.Context, workspaceID string, cursor *pagination.Cursor, limit int) (*service.SnapshotPageResult, error) {
	limit = pagination.ClampLimit(limit)

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, workspace_id, name, source_url, jsonb_array_length(records), created_at
			 FROM snapshots
			 WHERE workspace_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			workspaceID, cursor.CreatedAt, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, workspace_id, name, source_url, jsonb_array_length(records), created_at
			 FROM snapshots
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

	var items []*domain.Snapshot
	for rows.Next() {
		var s domain.Snapshot
		var sourceURL pgtype.Text
		if err := rows.Scan(&s.ID, &s.WorkspaceID, &s.Name, &sourceURL, &s.RecordCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		if sourceURL.Valid {
			s.SourceURL = sourceURL.String
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := pagination.Paginate(items, limit, func(s *domain.Snapshot) (string, time.Time) {
		return s.ID, s.CreatedAt
	})
	return &page, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSnapshotNotFound
	}
	return nil
}
