package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// RecurringInvoiceUseCase materializes contract invoices for a period.
type RecurringInvoiceUseCase struct {
	txManager  TransactionManager
	generator  InvoiceGenerator
	outboxRepo OutboxRepository
	idGen      IDGenerator
	snapshots  *SnapshotStore
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewRecurringInvoiceUseCase creates a new RecurringInvoiceUseCase.
func NewRecurringInvoiceUseCase(
	txManager TransactionManager,
	generator InvoiceGenerator,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	snapshots *SnapshotStore,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *RecurringInvoiceUseCase {
	return &RecurringInvoiceUseCase{
		txManager:  txManager,
		generator:  generator,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		snapshots:  snapshots,
		logger:     logger.With().Str("component", "recurring_invoices").Logger(),
		metrics:    metrics,
	}
}

// RecurringInvoiceResult reports a generation run.
type RecurringInvoiceResult struct {
	Period    domain.Period
	Generated int
	// Stale is set when invoices were generated but the views could not be refreshed.
	Stale bool
}

// Trigger generates the missing invoices of the period. Running it twice for
// the same period generates nothing the second time.
func (uc *RecurringInvoiceUseCase) Trigger(ctx context.Context, period domain.Period) (*RecurringInvoiceResult, error) {
	period = withDefaults(DashboardInput{Period: period}).Period
	if _, err := domain.NewPeriod(period.Year, period.Month); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	generated, err := uc.generator.Generate(txCtx, tx, period, now)
	if err != nil {
		return nil, fmt.Errorf("generate invoices for %s: %w", period, err)
	}

	if generated > 0 {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   period.String(),
			AggregateType: domain.AggregateTypePeriod,
			EventType:     domain.EventTypeInvoicesGenerated,
			Payload: map[string]any{
				"period":    period.String(),
				"generated": generated,
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvoicesGenerated.Add(float64(generated))
	}

	uc.logger.Info().Str("period", period.String()).Int("generated", generated).Msg("recurring invoices generated")

	result := &RecurringInvoiceResult{Period: period, Generated: generated}

	if _, err := uc.snapshots.ForceRefresh(context.WithoutCancel(ctx)); err != nil {
		uc.logger.Warn().Err(err).Msg("refresh after invoice generation failed")
		result.Stale = true
	}

	return result, nil
}
