package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apiKeySelect = `SELECT id, workspace_id, name, key_hash, created_at, revoked_at FROM api_keys`

// APIKeyRepository stores key hashes; plaintext tokens never reach it.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	var key domain.APIKey
	if err := row.Scan(&key.ID, &key.WorkspaceID, &key.Name, &key.KeyHash, &key.CreatedAt, &key.RevokedAt); err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO api_keys (id, workspace_id, name, key_hash, created_at, revoked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.WorkspaceID, key.Name, key.KeyHash, key.CreatedAt, key.RevokedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAPIKeyAlreadyExists
	}
	return err
}

func (r *APIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	return r.lookup(ctx, apiKeySelect+` WHERE id = $1`, id)
}

// GetByHash resolves a bearer token's sha256 hex digest.
func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	return r.lookup(ctx, apiKeySelect+` WHERE key_hash = $1`, hash)
}

func (r *APIKeyRepository) lookup(ctx context.Context, query, arg string) (*domain.APIKey, error) {
	key, err := scanAPIKey(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAPIKeyNotFound
	}
	return key, err
}

// GetByWorkspaceID lists every key of a workspace, revoked ones included,
// newest first.
func (r *APIKeyRepository) GetByWorkspaceID(ctx context.Context, workspaceID string) ([]*domain.APIKey, error) {
	rows, err := r.pool.Query(ctx,
		apiKeySelect+` WHERE workspace_id = $1 ORDER BY created_at DESC, id DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.APIKey, error) {
		return scanAPIKey(row)
	})
}

// Revoke stamps revoked_at once. Revoking again keeps the first timestamp.
func (r *APIKeyRepository) Revoke(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = COALESCE(revoked_at, $1) WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

func (r *APIKeyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}
