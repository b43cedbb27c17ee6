package domain_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
)

type entryOption func(*domain.Entry)

func newEntry(id string, amount int64, dir domain.Direction, due time.Time, opts ...entryOption) *domain.Entry {
	e := &domain.Entry{
		ID:            id,
		Description:   "entry " + id,
		Amount:        decimal.NewFromInt(amount),
		Direction:     dir,
		Category:      domain.CategoryGeneric,
		DueDate:       due,
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentPix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func withClient(id string) entryOption {
	return func(e *domain.Entry) { e.ClientID = id }
}

func withStatus(s domain.Status) entryOption {
	return func(e *domain.Entry) { e.Status = s }
}

func withCategory(c domain.Category) entryOption {
	return func(e *domain.Entry) { e.Category = c }
}

func withDescription(d string) entryOption {
	return func(e *domain.Entry) { e.Description = d }
}

func snapshotOf(entries []*domain.Entry, clients ...domain.Client) *domain.Snapshot {
	snap, _ := domain.NewSnapshot(1, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), entries, clients)
	return snap
}

func day(y int, m time.Month, d int) time.Time {
	return domain.NewDate(y, m, d)
}
