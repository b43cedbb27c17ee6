package handler

import (
	"context"
	"time"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

type stubDashboard struct {
	loadFn        func(ctx context.Context, input usecase.DashboardInput) (*usecase.DashboardView, error)
	summaryFn     func(ctx context.Context, period domain.Period) (*usecase.SummaryView, error)
	delinquencyFn func(ctx context.Context, asOf time.Time) (*usecase.DelinquencyView, error)
	statementFn   func(ctx context.Context, period domain.Period, filter domain.StatementFilter) (*usecase.StatementView, error)
}

func (s *stubDashboard) Load(ctx context.Context, input usecase.DashboardInput) (*usecase.DashboardView, error) {
	return s.loadFn(ctx, input)
}

func (s *stubDashboard) Summary(ctx context.Context, period domain.Period) (*usecase.SummaryView, error) {
	return s.summaryFn(ctx, period)
}

func (s *stubDashboard) Delinquency(ctx context.Context, asOf time.Time) (*usecase.DelinquencyView, error) {
	return s.delinquencyFn(ctx, asOf)
}

func (s *stubDashboard) Statement(ctx context.Context, period domain.Period, filter domain.StatementFilter) (*usecase.StatementView, error) {
	return s.statementFn(ctx, period, filter)
}

type stubEntries struct {
	createFn func(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

func (s *stubEntries) Create(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
	return s.createFn(ctx, input)
}

func (s *stubEntries) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubEntries) List(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
	return s.listFn(ctx, input)
}

type stubSettlements struct {
	quoteFn  func(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementQuote, error)
	submitFn func(ctx context.Context, input usecase.SubmitSettlementInput) (*usecase.SettlementResult, error)
	inFlight int
}

func (s *stubSettlements) Quote(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementQuote, error) {
	return s.quoteFn(ctx, req)
}

func (s *stubSettlements) Submit(ctx context.Context, input usecase.SubmitSettlementInput) (*usecase.SettlementResult, error) {
	return s.submitFn(ctx, input)
}

func (s *stubSettlements) IsBusy() bool { return s.inFlight > 0 }

func (s *stubSettlements) InFlight() int { return s.inFlight }

type stubInvoices struct {
	triggerFn func(ctx context.Context, period domain.Period) (*usecase.RecurringInvoiceResult, error)
}

func (s *stubInvoices) Trigger(ctx context.Context, period domain.Period) (*usecase.RecurringInvoiceResult, error) {
	return s.triggerFn(ctx, period)
}
