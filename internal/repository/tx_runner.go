package repository

import (
	"context"

	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner hands services repositories bound to one transaction, e.g. to
// delete a snapshot together with its export jobs.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise, including when
// fn panics.
func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Snapshots() service.SnapshotRepository {
	return NewSnapshotRepositoryWithTx(r.tx)
}

func (r txRepos) ExportJobs() service.ExportJobRepository {
	return NewExportJobRepositoryWithTx(r.tx)
}
