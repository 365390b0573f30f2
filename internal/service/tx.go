package service

import "context"

// TxRepositories are repositories sharing one database transaction.
type TxRepositories interface {
	Snapshots() SnapshotRepository
	ExportJobs() ExportJobRepository
}

// TxRunner runs fn in a transaction; an error from fn rolls everything back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
