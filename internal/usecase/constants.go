package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultSettlementTimeout bounds a settlement dispatch, retries included.
	DefaultSettlementTimeout = 30 * time.Second

	// DefaultSettlementCleanupTimeout bounds lock release and the follow-up
	// refresh, which run even when the dispatch timed out.
	DefaultSettlementCleanupTimeout = 5 * time.Second

	// DefaultSettlementLockTTL is how long an entry stays reserved by a settlement
	DefaultSettlementLockTTL = time.Minute

	// DefaultSnapshotFetchTimeout bounds a shared entry store fetch.
	DefaultSnapshotFetchTimeout = 15 * time.Second

	// DefaultSnapshotMaxAge is how long a snapshot is served without refetching.
	DefaultSnapshotMaxAge = 5 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
