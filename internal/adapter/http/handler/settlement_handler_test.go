package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

func TestSettlementHandler_Quote(t *testing.T) {
	var got domain.SettlementRequest
	h := NewSettlementHandler(&stubSettlements{
		quoteFn: func(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementQuote, error) {
			got = req
			return &domain.SettlementQuote{
				EntryIDs:        []string{"e1"},
				AlreadyPaid:     []string{"e2"},
				Total:           decimal.NewFromInt(100),
				SnapshotVersion: 3,
			}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Quote(rr, httptest.NewRequest(http.MethodPost, "/api/v1/settlements/quote",
		bytes.NewBufferString(`{"entry_ids":["e1","e2"]}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(got.EntryIDs) != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}

	resp := decodeBody[dto.SettlementQuoteResponse](t, rr)
	if resp.Count != 1 || resp.AlreadyPaid[0] != "e2" || resp.SnapshotVersion != 3 {
		t.Fatalf("unexpected quote: %+v", resp)
	}
}

func TestSettlementHandler_Quote_UnknownEntry(t *testing.T) {
	h := NewSettlementHandler(&stubSettlements{
		quoteFn: func(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementQuote, error) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, "e9")
		},
	})

	rr := httptest.NewRecorder()
	h.Quote(rr, httptest.NewRequest(http.MethodPost, "/api/v1/settlements/quote",
		bytes.NewBufferString(`{"entry_ids":["e9"]}`)))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSettlementHandler_Submit(t *testing.T) {
	settledAt := time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)

	var got usecase.SubmitSettlementInput
	h := NewSettlementHandler(&stubSettlements{
		submitFn: func(ctx context.Context, input usecase.SubmitSettlementInput) (*usecase.SettlementResult, error) {
			got = input
			return &usecase.SettlementResult{
				SettledAt:       settledAt,
				Total:           input.ConfirmedTotal,
				EntryIDs:        input.EntryIDs,
				SnapshotVersion: 5,
			}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Submit(rr, httptest.NewRequest(http.MethodPost, "/api/v1/settlements",
		bytes.NewBufferString(`{"entry_ids":["e1","e3"],"confirmed_total":"250.00"}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !got.ConfirmedTotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected confirmed total: %s", got.ConfirmedTotal)
	}

	resp := decodeBody[dto.SettlementResponse](t, rr)
	if resp.Count != 2 || resp.SettledAt == nil || !resp.SettledAt.Equal(settledAt) || resp.NoOp {
		t.Fatalf("unexpected settlement: %+v", resp)
	}
}

func TestSettlementHandler_Submit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"unconfirmed", fmt.Errorf("%w: confirmed 1, due 2", domain.ErrSettlementUnconfirmed), http.StatusUnprocessableEntity},
		{"in progress", domain.ErrSettlementInProgress, http.StatusConflict},
		{"failed", fmt.Errorf("%w: %w", domain.ErrSettlementFailed, errors.New("connection reset")), http.StatusBadGateway},
		{"no snapshot", domain.ErrSnapshotUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := NewSettlementHandler(&stubSettlements{
				submitFn: func(ctx context.Context, input usecase.SubmitSettlementInput) (*usecase.SettlementResult, error) {
					return nil, tt.err
				},
			})

			rr := httptest.NewRecorder()
			h.Submit(rr, httptest.NewRequest(http.MethodPost, "/api/v1/settlements",
				bytes.NewBufferString(`{"entry_ids":["e1"],"confirmed_total":"1"}`)))

			if rr.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rr.Code)
			}
		})
	}
}

func TestSettlementHandler_Status(t *testing.T) {
	h := NewSettlementHandler(&stubSettlements{inFlight: 2})

	rr := httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/api/v1/settlements/status", nil))

	resp := decodeBody[dto.SettlementStatusResponse](t, rr)
	if !resp.Busy || resp.InFlight != 2 {
		t.Fatalf("unexpected status: %+v", resp)
	}
}

func TestInvoiceHandler_Trigger(t *testing.T) {
	tests := []struct {
		name     string
		body     io.Reader
		expected domain.Period
	}{
		{"explicit period", bytes.NewBufferString(`{"period":"2024-02"}`), feb2024},
		{"empty body", http.NoBody, domain.Period{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Period
			h := NewInvoiceHandler(&stubInvoices{
				triggerFn: func(ctx context.Context, period domain.Period) (*usecase.RecurringInvoiceResult, error) {
					got = period
					return &usecase.RecurringInvoiceResult{Period: feb2024, Generated: 3}, nil
				},
			})

			rr := httptest.NewRecorder()
			h.Trigger(rr, httptest.NewRequest(http.MethodPost, "/api/v1/invoices/recurring", tt.body))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if got != tt.expected {
				t.Fatalf("expected period %v, got %v", tt.expected, got)
			}

			resp := decodeBody[dto.RecurringInvoiceResponse](t, rr)
			if resp.Generated != 3 || resp.Period != "2024-02" {
				t.Fatalf("unexpected result: %+v", resp)
			}
		})
	}
}

func TestInvoiceHandler_Trigger_InvalidPeriod(t *testing.T) {
	h := NewInvoiceHandler(&stubInvoices{})

	rr := httptest.NewRecorder()
	h.Trigger(rr, httptest.NewRequest(http.MethodPost, "/api/v1/invoices/recurring",
		bytes.NewBufferString(`{"period":"2024-00"}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("dial tcp: connection refused") }

	h := NewHealthHandlerWithChecks(
		HealthCheck{Name: "postgres", Check: ok},
		HealthCheck{Name: "redis", Check: ok},
	)

	rr := httptest.NewRecorder()
	h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected liveness 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected readiness 200, got %d", rr.Code)
	}
	if status := decodeBody[map[string]string](t, rr); status["redis"] != "ok" {
		t.Fatalf("unexpected readiness body: %+v", status)
	}

	h = NewHealthHandlerWithChecks(
		HealthCheck{Name: "postgres", Check: ok},
		HealthCheck{Name: "redis", Check: down},
	)

	rr = httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected readiness 503, got %d", rr.Code)
	}
	if resp := decodeBody[dto.ErrorResponse](t, rr); resp.Error != "redis unhealthy" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}
