package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

// SettlementConfig tunes settlement dispatch.
type SettlementConfig struct {
	Timeout time.Duration
	LockTTL time.Duration
}

// SettlementUseCase marks batches of entries as paid, all or nothing.
type SettlementUseCase struct {
	txManager  TransactionManager
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	retrier    Retrier
	locker     SettlementLocker
	snapshots  *SnapshotStore
	cfg        SettlementConfig
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	inFlight map[string]struct{}
	active   int
}

// NewSettlementUseCase creates a new SettlementUseCase. retrier and locker are optional.
func NewSettlementUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	locker SettlementLocker,
	snapshots *SnapshotStore,
	cfg SettlementConfig,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *SettlementUseCase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSettlementTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultSettlementLockTTL
	}

	return &SettlementUseCase{
		txManager:  txManager,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		retrier:    retrier,
		locker:     locker,
		snapshots:  snapshots,
		cfg:        cfg,
		logger:     logger.With().Str("component", "settlement").Logger(),
		metrics:    metrics,
		inFlight:   make(map[string]struct{}),
	}
}

// SubmitSettlementInput is a settlement request plus the total the user confirmed.
type SubmitSettlementInput struct {
	EntryIDs       []string
	ConfirmedTotal decimal.Decimal
}

// SettlementResult reports a completed settlement.
type SettlementResult struct {
	SettledAt       time.Time
	Total           decimal.Decimal
	EntryIDs        []string
	AlreadyPaid     []string
	SnapshotVersion uint64
	NoOp            bool
	// Stale is set when the entries were settled but the views could not be refreshed.
	Stale bool
}

// Quote resolves a request against the current snapshot without changing anything.
func (uc *SettlementUseCase) Quote(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementQuote, error) {
	snap, _, err := uc.snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}

	return domain.ResolveSettlement(snap, req)
}

// IsBusy reports whether a settlement is being dispatched.
func (uc *SettlementUseCase) IsBusy() bool {
	return uc.InFlight() > 0
}

// InFlight returns the number of settlements being dispatched.
func (uc *SettlementUseCase) InFlight() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.active
}

// Submit settles the unsettled subset of the request. The dispatch runs on a
// context detached from ctx, so a caller that goes away does not abort it.
func (uc *SettlementUseCase) Submit(ctx context.Context, input SubmitSettlementInput) (*SettlementResult, error) {
	quote, err := uc.Quote(ctx, domain.SettlementRequest{EntryIDs: input.EntryIDs})
	if err != nil {
		return nil, err
	}

	if quote.Empty() {
		uc.observe("noop")
		return &SettlementResult{
			NoOp:            true,
			EntryIDs:        []string{},
			AlreadyPaid:     quote.AlreadyPaid,
			Total:           decimal.Zero,
			SnapshotVersion: quote.SnapshotVersion,
		}, nil
	}

	if !input.ConfirmedTotal.Equal(quote.Total) {
		return nil, fmt.Errorf("%w: confirmed %s, due %s",
			domain.ErrSettlementUnconfirmed, input.ConfirmedTotal.StringFixed(domain.AmountScale), quote.Total.StringFixed(domain.AmountScale))
	}

	if !uc.claim(quote.EntryIDs) {
		uc.observe("busy")
		return nil, domain.ErrSettlementInProgress
	}
	defer uc.unclaim(quote.EntryIDs)

	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.Timeout)
	defer cancel()

	if uc.locker != nil {
		token := uc.idGen.Generate()

		acquired, err := uc.locker.Acquire(dispatchCtx, token, quote.EntryIDs, uc.cfg.LockTTL)
		if err != nil {
			uc.observe("failure")
			return nil, fmt.Errorf("%w: acquire lock: %w", domain.ErrSettlementFailed, err)
		}
		if !acquired {
			uc.observe("busy")
			return nil, domain.ErrSettlementInProgress
		}

		defer func() {
			releaseCtx, cancel := uc.cleanupContext(ctx)
			defer cancel()

			if err := uc.locker.Release(releaseCtx, token, quote.EntryIDs); err != nil {
				uc.logger.Warn().Err(err).Str("token", token).Msg("failed to release settlement lock")
			}
		}()
	}

	start := time.Now()
	settledAt := start.UTC()

	var settled []string
	err = uc.retry(dispatchCtx, func() error {
		var err error
		settled, err = uc.settle(dispatchCtx, quote, settledAt)
		return err
	})
	if err != nil {
		uc.observe("failure")
		uc.logger.Error().Err(err).Strs("entry_ids", quote.EntryIDs).Msg("settlement failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrSettlementFailed, err)
	}

	if len(settled) == 0 {
		// Another replica settled the entries after this snapshot was taken.
		uc.observe("noop")
		result := &SettlementResult{
			NoOp:        true,
			EntryIDs:    []string{},
			AlreadyPaid: append(append([]string(nil), quote.AlreadyPaid...), quote.EntryIDs...),
			Total:       decimal.Zero,
		}
		uc.refreshInto(ctx, result)
		return result, nil
	}

	if uc.metrics != nil {
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		uc.metrics.SettledEntries.Add(float64(quote.Count()))
		uc.metrics.SettledAmount.Observe(quote.Total.InexactFloat64())
	}
	uc.observe("success")

	uc.logger.Info().
		Strs("entry_ids", quote.EntryIDs).
		Str("total", quote.Total.String()).
		Msg("entries settled")

	result := &SettlementResult{
		SettledAt:   settledAt,
		Total:       quote.Total,
		EntryIDs:    quote.EntryIDs,
		AlreadyPaid: quote.AlreadyPaid,
	}

	// The views must reflect the settlement, but failing to refetch does not undo it.
	uc.refreshInto(ctx, result)
	return result, nil
}

// cleanupContext bounds work that must run after dispatch even when the
// dispatch context has expired.
func (uc *SettlementUseCase) cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), DefaultSettlementCleanupTimeout)
}

// refreshInto refetches the snapshot and records its version on result.
func (uc *SettlementUseCase) refreshInto(ctx context.Context, result *SettlementResult) {
	refreshCtx, cancel := uc.cleanupContext(ctx)
	defer cancel()

	snap, err := uc.snapshots.ForceRefresh(refreshCtx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("refresh after settlement failed")
		result.Stale = true
		if current, _ := uc.snapshots.Current(); current != nil {
			result.SnapshotVersion = current.Version()
		}
		return
	}

	result.SnapshotVersion = snap.Version()
}

// settle marks the quoted entries paid in one transaction and returns their
// ids. It returns no ids when every quoted entry is already paid.
func (uc *SettlementUseCase) settle(ctx context.Context, quote *domain.SettlementQuote, settledAt time.Time) ([]string, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entries, err := uc.entryRepo.GetByIDsForUpdate(ctx, tx, quote.EntryIDs)
	if err != nil {
		return nil, err
	}

	if len(entries) != len(quote.EntryIDs) {
		return nil, domain.ErrEntryNotFound
	}

	total := decimal.Zero
	paid := 0
	for _, e := range entries {
		if e.Status == domain.StatusPaid {
			paid++
			continue
		}
		total = total.Add(e.Amount)
	}

	if paid == len(entries) {
		return nil, nil
	}

	if paid > 0 || !total.Equal(quote.Total) {
		return nil, fmt.Errorf("entries changed since quote: %d already paid, total %s, quoted %s", paid, total, quote.Total)
	}

	updated, err := uc.entryRepo.MarkPaid(ctx, tx, quote.EntryIDs, settledAt)
	if err != nil {
		return nil, err
	}

	if updated != int64(len(quote.EntryIDs)) {
		return nil, fmt.Errorf("marked %d of %d entries as paid", updated, len(quote.EntryIDs))
	}

	settlementID := uc.idGen.Generate()
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   settlementID,
		AggregateType: domain.AggregateTypeSettlement,
		EventType:     domain.EventTypeEntriesSettled,
		Payload: map[string]any{
			"settlement_id": settlementID,
			"entry_ids":     quote.EntryIDs,
			"total":         quote.Total.String(),
			"paid_at":       settledAt.Format(time.RFC3339),
		},
		CreatedAt: settledAt,
		Published: false,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return quote.EntryIDs, nil
}

func (uc *SettlementUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

// claim reserves ids for this process, or none of them when any is taken.
func (uc *SettlementUseCase) claim(ids []string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, id := range ids {
		if _, busy := uc.inFlight[id]; busy {
			return false
		}
	}

	for _, id := range ids {
		uc.inFlight[id] = struct{}{}
	}
	uc.active++

	if uc.metrics != nil {
		uc.metrics.SettlementsInFlight.Set(float64(uc.active))
	}
	return true
}

func (uc *SettlementUseCase) unclaim(ids []string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, id := range ids {
		delete(uc.inFlight, id)
	}
	uc.active--

	if uc.metrics != nil {
		uc.metrics.SettlementsInFlight.Set(float64(uc.active))
	}
}

func (uc *SettlementUseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.SettlementsSubmitted.WithLabelValues(outcome).Inc()
	}
}

