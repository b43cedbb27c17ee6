package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

func TestEntryHandler_Create(t *testing.T) {
	var got usecase.CreateEntryInput
	h := NewEntryHandler(&stubEntries{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
			got = input
			return &domain.Entry{
				ID:            "e1",
				Description:   input.Description,
				Amount:        input.Amount,
				Direction:     input.Direction,
				Category:      input.Category,
				DueDate:       input.DueDate,
				Status:        input.Status,
				PaymentMethod: input.PaymentMethod,
				CreatedAt:     time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
			}, nil
		},
	})

	body := `{"description":"Rent","amount":"1500.00","direction":"OUTFLOW","category":"GENERIC","due_date":"2024-02-05","payment_method":"BANK_SLIP"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("expected default status PENDING, got %s", got.Status)
	}

	resp := decodeBody[dto.EntryResponse](t, rr)
	if resp.ID != "e1" || resp.DueDate != "2024-02-05" || !resp.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected entry: %+v", resp)
	}
	if resp.AttachmentRefs == nil {
		t.Fatalf("expected empty attachment list, got nil")
	}
}

func TestEntryHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{"malformed json", `{"description":`, nil, http.StatusBadRequest},
		{"unknown field", `{"currency":"BRL"}`, nil, http.StatusBadRequest},
		{"bad due date", `{"description":"x","amount":"1","due_date":"tomorrow"}`, nil, http.StatusBadRequest},
		{"validation", `{"description":"x","amount":"0","due_date":"2024-02-05"}`, domain.ErrInvalidAmount, http.StatusBadRequest},
		{"duplicate", `{"description":"x","amount":"1","due_date":"2024-02-05"}`, domain.ErrDuplicateEntry, http.StatusConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := NewEntryHandler(&stubEntries{
				createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
					if tt.err == nil {
						t.Fatalf("service should not be called")
					}
					return nil, tt.err
				},
			})

			rr := httptest.NewRecorder()
			h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString(tt.body)))

			if rr.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestEntryHandler_List(t *testing.T) {
	var got usecase.ListEntriesInput
	h := NewEntryHandler(&stubEntries{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
			got = input
			return []*domain.Entry{
				{ID: "e1", Amount: decimal.NewFromInt(10), DueDate: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
				{ID: "e2", Amount: decimal.NewFromInt(20), DueDate: time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)},
			}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/entries?period=2024-02&filter=outflow", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.Period != feb2024 || got.Filter.Quick != domain.FilterOutflow {
		t.Fatalf("unexpected input: %+v", got)
	}

	resp := decodeBody[dto.EntryListResponse](t, rr)
	if resp.Count != 2 || resp.Entries[1].ID != "e2" {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"not found", domain.ErrEntryNotFound, http.StatusNotFound},
		{"paid", domain.ErrEntryPaid, http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			h := NewEntryHandler(&stubEntries{
				deleteFn: func(ctx context.Context, id string) error {
					gotID = id
					return tt.err
				},
			})

			r := chi.NewRouter()
			r.Delete("/api/v1/entries/{id}", h.Delete)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/entries/e42", nil))

			if rr.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rr.Code)
			}
			if gotID != "e42" {
				t.Fatalf("expected id e42, got %q", gotID)
			}
		})
	}
}
