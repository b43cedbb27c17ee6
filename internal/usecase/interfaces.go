package usecase

import (
	"context"
	"time"

	"github.com/iho/cashbook/internal/domain"
)

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// List returns every entry, or only those due inside hint when it is not nil.
	List(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error)
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Entry, error)
	// MarkPaid flips unsettled entries to PAID and reports how many rows changed.
	MarkPaid(ctx context.Context, tx Transaction, ids []string, paidAt time.Time) (int64, error)
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	Delete(ctx context.Context, tx Transaction, id string) error
}

// ClientRepository defines read access to the client directory.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
}

// InvoiceGenerator materializes the recurring contract invoices of a period.
type InvoiceGenerator interface {
	// Generate inserts the missing invoices and returns how many were created.
	Generate(ctx context.Context, tx Transaction, period domain.Period, createdAt time.Time) (int, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// SettlementLocker guards entries against concurrent settlement across processes.
type SettlementLocker interface {
	// Acquire locks every id for token, or none of them. It returns false when
	// any id is already held by another token.
	Acquire(ctx context.Context, token string, ids []string, ttl time.Duration) (bool, error)
	// Release drops the locks still owned by token.
	Release(ctx context.Context, token string, ids []string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}
