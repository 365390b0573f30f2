package service

import "context"

type testTxRepos struct {
	snapshots  SnapshotRepository
	exportJobs ExportJobRepository
}

func (t *testTxRepos) Snapshots() SnapshotRepository {
	return t.snapshots
}

func (t *testTxRepos) ExportJobs() ExportJobRepository {
	return t.exportJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
