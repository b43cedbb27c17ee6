package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
	"github.com/iho/cashbook/internal/usecase/mocks"
)

func newEntryUseCase(repo *mocks.FakeEntryRepository, txMgr usecase.TransactionManager, outbox usecase.OutboxRepository) (*usecase.EntryUseCase, *usecase.SnapshotStore) {
	store := newStore(repo, clients())
	uc := usecase.NewEntryUseCase(txMgr, repo, clients(), outbox, mocks.NewSequenceIDGenerator("entry"), store, zerolog.Nop(), nil)
	return uc, store
}

func TestEntryUseCase_Create(t *testing.T) {
	repo := ledger()
	outbox := mocks.NewFakeOutboxRepository()
	uc, store := newEntryUseCase(repo, mocks.NewFakeTxManager(), outbox)

	created, err := uc.Create(context.Background(), usecase.CreateEntryInput{
		Description:   "Quarterly maintenance",
		Amount:        decimal.RequireFromString("420.50"),
		Direction:     domain.DirectionInflow,
		Category:      domain.CategoryContract,
		DueDate:       time.Date(2024, time.March, 10, 18, 45, 0, 0, time.UTC),
		PaymentMethod: domain.PaymentBankSlip,
		ClientID:      "A",
	})
	require.NoError(t, err)

	assert.Equal(t, "entry-1", created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, domain.NewDate(2024, time.March, 10), created.DueDate)
	assert.NotNil(t, repo.Get(created.ID))

	events := outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeEntryCreated, events[0].EventType)

	snap, _ := store.Current()
	require.NotNil(t, snap, "a write refreshes the snapshot")
	_, ok := snap.Entry(created.ID)
	assert.True(t, ok)
}

func TestEntryUseCase_CreateValidatesBeforeWriting(t *testing.T) {
	valid := usecase.CreateEntryInput{
		Description:   "Router",
		Amount:        decimal.NewFromInt(10),
		Direction:     domain.DirectionOutflow,
		Category:      domain.CategoryPurchase,
		DueDate:       feb1,
		PaymentMethod: domain.PaymentCash,
	}

	tests := []struct {
		name    string
		mutate  func(in *usecase.CreateEntryInput)
		wantErr error
	}{
		{name: "zero amount", mutate: func(in *usecase.CreateEntryInput) { in.Amount = decimal.Zero }, wantErr: domain.ErrInvalidAmount},
		{name: "blank description", mutate: func(in *usecase.CreateEntryInput) { in.Description = "  " }, wantErr: domain.ErrEmptyDescription},
		{name: "unknown category", mutate: func(in *usecase.CreateEntryInput) { in.Category = "RENT" }, wantErr: domain.ErrInvalidCategory},
		{name: "missing due date", mutate: func(in *usecase.CreateEntryInput) { in.DueDate = time.Time{} }, wantErr: domain.ErrInvalidDueDate},
		{name: "amount above limit", mutate: func(in *usecase.CreateEntryInput) { in.Amount = decimal.RequireFromString("1500000000.00") }, wantErr: domain.ErrAmountTooLarge},
		{
			name: "installment beyond total",
			mutate: func(in *usecase.CreateEntryInput) {
				index, total := 4, 3
				in.InstallmentIndex, in.InstallmentTotal = &index, &total
			},
			wantErr: domain.ErrInvalidInstallment,
		},
		{
			name:    "too many attachments",
			mutate:  func(in *usecase.CreateEntryInput) { in.AttachmentRefs = []string{"a", "b", "c"} },
			wantErr: domain.ErrTooManyAttachments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// no expectations: any storage call fails the test
			txMgr := mocks.NewMockTransactionManager(ctrl)
			outbox := mocks.NewMockOutboxRepository(ctrl)
			uc, _ := newEntryUseCase(ledger(), txMgr, outbox)

			input := valid
			tt.mutate(&input)

			_, err := uc.Create(context.Background(), input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidationError(err))
		})
	}
}

func TestEntryUseCase_CreatePaidSetsPaidAt(t *testing.T) {
	repo := ledger()
	uc, _ := newEntryUseCase(repo, mocks.NewFakeTxManager(), mocks.NewFakeOutboxRepository())

	created, err := uc.Create(context.Background(), usecase.CreateEntryInput{
		Description:   "Cash sale",
		Amount:        decimal.NewFromInt(35),
		Direction:     domain.DirectionInflow,
		Category:      domain.CategoryGeneric,
		DueDate:       feb1,
		Status:        domain.StatusPaid,
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)
	assert.NotNil(t, created.PaidAt)
}

func TestEntryUseCase_Delete(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "unsettled entry", id: "a1"},
		{name: "paid entry stays", id: "o1", wantErr: domain.ErrEntryPaid},
		{name: "unknown entry", id: "ghost", wantErr: domain.ErrEntryNotFound},
		{name: "missing id", id: "", wantErr: domain.ErrMissingEntryID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := ledger()
			outbox := mocks.NewFakeOutboxRepository()
			uc, _ := newEntryUseCase(repo, mocks.NewFakeTxManager(), outbox)

			err := uc.Delete(context.Background(), tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, outbox.Events())
				return
			}

			require.NoError(t, err)
			assert.Nil(t, repo.Get(tt.id))
			require.Len(t, outbox.Events(), 1)
			assert.Equal(t, domain.EventTypeEntryDeleted, outbox.Events()[0].EventType)
		})
	}
}

func TestEntryUseCase_ListUsesPeriodHint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockEntryRepository(ctrl)
	repo.EXPECT().
		List(gomock.Any(), &jan2024).
		Return([]*domain.Entry{
			entry("a1", 100, domain.DirectionInflow, domain.NewDate(2024, time.January, 5), "A", domain.StatusOverdue),
			entry("o1", 80, domain.DirectionOutflow, domain.NewDate(2024, time.January, 15), "", domain.StatusPaid),
		}, nil)

	uc := usecase.NewEntryUseCase(nil, repo, clients(), nil, nil, nil, zerolog.Nop(), nil)

	entries, err := uc.List(context.Background(), usecase.ListEntriesInput{
		Period: jan2024,
		Filter: domain.StatementFilter{Quick: domain.FilterInflow},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a1", entries[0].ID)
}

func TestEntryUseCase_ListPropagatesFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockEntryRepository(ctrl)
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	uc := usecase.NewEntryUseCase(nil, repo, clients(), nil, nil, nil, zerolog.Nop(), nil)

	_, err := uc.List(context.Background(), usecase.ListEntriesInput{Period: jan2024})
	assert.ErrorContains(t, err, "timeout")
}
