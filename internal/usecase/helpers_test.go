package usecase_test

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
	"github.com/iho/cashbook/internal/usecase/mocks"
)

var (
	jan2024 = domain.Period{Year: 2024, Month: time.January}
	feb1    = domain.NewDate(2024, time.February, 1)
)

func entry(id string, amount int64, dir domain.Direction, due time.Time, clientID string, status domain.Status) *domain.Entry {
	return &domain.Entry{
		ID:            id,
		Description:   "entry " + id,
		Amount:        decimal.NewFromInt(amount),
		Direction:     dir,
		Category:      domain.CategoryService,
		DueDate:       due,
		Status:        status,
		PaymentMethod: domain.PaymentPix,
		ClientID:      clientID,
	}
}

// ledger is the scenario used across the use case tests: client A owes two
// overdue inflows, one clientless inflow is overdue, and one outflow is paid.
func ledger() *mocks.FakeEntryRepository {
	return mocks.NewFakeEntryRepository(
		entry("a1", 100, domain.DirectionInflow, domain.NewDate(2024, time.January, 5), "A", domain.StatusOverdue),
		entry("a2", 50, domain.DirectionInflow, domain.NewDate(2024, time.January, 12), "A", domain.StatusPending),
		entry("s1", 30, domain.DirectionInflow, domain.NewDate(2024, time.January, 20), "", domain.StatusPending),
		entry("o1", 80, domain.DirectionOutflow, domain.NewDate(2024, time.January, 15), "", domain.StatusPaid),
	)
}

func clients() *mocks.FakeClientRepository {
	return mocks.NewFakeClientRepository(domain.Client{ID: "A", DisplayName: "Acme Corp"})
}

func newStore(repo usecase.EntryRepository, clientRepo usecase.ClientRepository) *usecase.SnapshotStore {
	return usecase.NewSnapshotStore(repo, clientRepo, usecase.SnapshotConfig{FetchTimeout: time.Second}, zerolog.Nop(), nil)
}
