package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO workspaces (id, name, created_at) VALUES ($1, $2, $3)`,
		ws.ID, ws.Name, ws.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrWorkspaceAlreadyExists
	}
	return err
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM workspaces WHERE id = $1`, id)
}

func (r *WorkspaceRepository) GetByName(ctx context.Context, name string) (*domain.Workspace, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM workspaces WHERE name = $1`, name)
}

func (r *WorkspaceRepository) getOne(ctx context.Context, query string, arg string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.pool.QueryRow(ctx, query, arg).Scan(&ws.ID, &ws.Name, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func (r *WorkspaceRepository) List(ctx context.Context) ([]*domain.Workspace, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM workspaces ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*domain.Workspace
	for rows.Next() {
		var ws domain.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.CreatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, &ws)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM workspaces WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}
