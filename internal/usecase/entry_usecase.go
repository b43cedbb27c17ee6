package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// EntryUseCase handles entry writes and period-scoped listing.
type EntryUseCase struct {
	txManager  TransactionManager
	entryRepo  EntryRepository
	clientRepo ClientRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	snapshots  *SnapshotStore
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	clientRepo ClientRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	snapshots *SnapshotStore,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:  txManager,
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		snapshots:  snapshots,
		logger:     logger.With().Str("component", "entries").Logger(),
		metrics:    metrics,
	}
}

// CreateEntryInput represents input for creating an entry.
type CreateEntryInput struct {
	DueDate          time.Time
	InstallmentIndex *int
	InstallmentTotal *int
	Description      string
	ClientID         string
	ReceiptRef       string
	Direction        domain.Direction
	Category         domain.Category
	Status           domain.Status
	PaymentMethod    domain.PaymentMethod
	AttachmentRefs   []string
	Amount           decimal.Decimal
}

// ListEntriesInput represents input for listing entries of a period.
type ListEntriesInput struct {
	Filter domain.StatementFilter
	Period domain.Period
}

// Create validates and stores a new entry.
func (uc *EntryUseCase) Create(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	now := time.Now().UTC()

	entry := &domain.Entry{
		ID:               uc.idGen.Generate(),
		Description:      input.Description,
		Amount:           input.Amount,
		Direction:        input.Direction,
		Category:         input.Category,
		DueDate:          domain.Date(input.DueDate),
		Status:           input.Status,
		PaymentMethod:    input.PaymentMethod,
		InstallmentIndex: input.InstallmentIndex,
		InstallmentTotal: input.InstallmentTotal,
		ClientID:         input.ClientID,
		ReceiptRef:       input.ReceiptRef,
		AttachmentRefs:   input.AttachmentRefs,
		CreatedAt:        now,
	}
	if entry.Status == "" {
		entry.Status = domain.StatusPending
	}
	if entry.Status == domain.StatusPaid {
		entry.PaidAt = &now
	}

	// Validate before touching the store.
	if err := entry.ValidateDraft(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryCreated,
		Payload: map[string]any{
			"entry_id":  entry.ID,
			"direction": string(entry.Direction),
			"category":  string(entry.Category),
			"amount":    entry.Amount.String(),
			"due_date":  entry.DueDate.Format(time.DateOnly),
			"client_id": entry.ClientID,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.recordOperation("create")
	uc.refresh(ctx)

	return entry, nil
}

// Delete removes an unsettled entry. Paid entries are part of the books and stay.
func (uc *EntryUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingEntryID
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entries, err := uc.entryRepo.GetByIDsForUpdate(txCtx, tx, []string{id})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return domain.ErrEntryNotFound
	}
	if entries[0].Status == domain.StatusPaid {
		return domain.ErrEntryPaid
	}

	if err := uc.entryRepo.Delete(txCtx, tx, id); err != nil {
		return err
	}

	now := time.Now().UTC()
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   id,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryDeleted,
		Payload: map[string]any{
			"entry_id": id,
			"amount":   entries[0].Amount.String(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.recordOperation("delete")
	uc.refresh(ctx)

	return nil
}

// List fetches only the entries due in the period and filters them.
func (uc *EntryUseCase) List(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	period := withDefaults(DashboardInput{Period: input.Period}).Period

	entries, err := uc.entryRepo.List(ctx, &period)
	if err != nil {
		return nil, err
	}

	clients, err := uc.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	snap, rejected := domain.NewSnapshot(0, time.Now().UTC(), entries, clients)
	for _, r := range rejected {
		uc.logger.Warn().Err(r.Err).Str("entry_id", r.EntryID).Msg("malformed entry skipped")
	}

	return domain.FilterStatement(snap, period, input.Filter), nil
}

func (uc *EntryUseCase) refresh(ctx context.Context) {
	if uc.snapshots == nil {
		return
	}
	if _, err := uc.snapshots.ForceRefresh(context.WithoutCancel(ctx)); err != nil {
		uc.logger.Warn().Err(err).Msg("refresh after entry write failed")
	}
}

func (uc *EntryUseCase) recordOperation(op string) {
	if uc.metrics != nil {
		uc.metrics.EntryOperations.WithLabelValues(op).Inc()
	}
}
