package handler

import (
	"context"
	"time"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// DashboardService derives the finance read models.
type DashboardService interface {
	Load(ctx context.Context, input usecase.DashboardInput) (*usecase.DashboardView, error)
	Summary(ctx context.Context, period domain.Period) (*usecase.SummaryView, error)
	Delinquency(ctx context.Context, asOf time.Time) (*usecase.DelinquencyView, error)
	Statement(ctx context.Context, period domain.Period, filter domain.StatementFilter) (*usecase.StatementView, error)
}

// EntryService manages ledger entries.
type EntryService interface {
	Create(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

// SettlementService quotes and dispatches settlements.
type SettlementService interface {
	Quote(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementQuote, error)
	Submit(ctx context.Context, input usecase.SubmitSettlementInput) (*usecase.SettlementResult, error)
	IsBusy() bool
	InFlight() int
}

// InvoiceService generates recurring contract invoices.
type InvoiceService interface {
	Trigger(ctx context.Context, period domain.Period) (*usecase.RecurringInvoiceResult, error)
}

var (
	_ DashboardService  = (*usecase.DashboardUseCase)(nil)
	_ EntryService      = (*usecase.EntryUseCase)(nil)
	_ SettlementService = (*usecase.SettlementUseCase)(nil)
	_ InvoiceService    = (*usecase.RecurringInvoiceUseCase)(nil)
)
