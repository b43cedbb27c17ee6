package integration

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/cashbook/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashbook/internal/adapter/repository/redis"
	"github.com/iho/cashbook/internal/usecase"
	"github.com/iho/cashbook/tests/testutil"
)

// app wires the use cases over a real database and an in-memory redis.
type app struct {
	db          *testutil.TestDB
	redis       *redislib.Client
	outbox      *postgresRepo.OutboxRepository
	snapshots   *usecase.SnapshotStore
	dashboard   *usecase.DashboardUseCase
	entries     *usecase.EntryUseCase
	settlements *usecase.SettlementUseCase
	invoices    *usecase.RecurringInvoiceUseCase
}

func newApp(t *testing.T) *app {
	t.Helper()

	db := testutil.NewTestDB(t)

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := zerolog.Nop()

	txManager := postgresRepo.NewTxManager(db.Pool)
	entryRepo := postgresRepo.NewEntryRepository(db.Pool)
	clientRepo := postgresRepo.NewClientRepository(db.Pool)
	outboxRepo := postgresRepo.NewOutboxRepository(db.Pool)
	idGen := postgresRepo.NewULIDGenerator()

	snapshots := usecase.NewSnapshotStore(entryRepo, clientRepo, usecase.SnapshotConfig{}, logger, nil)

	return &app{
		db:        db,
		redis:     redisClient,
		outbox:    outboxRepo,
		snapshots: snapshots,
		dashboard: usecase.NewDashboardUseCase(snapshots),
		entries:   usecase.NewEntryUseCase(txManager, entryRepo, clientRepo, outboxRepo, idGen, snapshots, logger, nil),
		settlements: usecase.NewSettlementUseCase(txManager, entryRepo, outboxRepo, idGen,
			postgresRepo.NewRetrier(logger), redisRepo.NewSettlementLocker(redisClient), snapshots,
			usecase.SettlementConfig{}, logger, nil),
		invoices: usecase.NewRecurringInvoiceUseCase(txManager,
			postgresRepo.NewContractInvoiceGenerator(idGen), outboxRepo, idGen, snapshots, logger, nil),
	}
}

func (a *app) refresh(t *testing.T) {
	t.Helper()

	if _, err := a.snapshots.ForceRefresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh snapshot: %v", err)
	}
}

func (a *app) eventTypes(t *testing.T) []string {
	t.Helper()

	events, err := a.outbox.GetUnpublished(context.Background(), 100)
	if err != nil {
		t.Fatalf("failed to read outbox: %v", err)
	}

	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	return types
}
