package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CreateEntryRequest represents a request to create an entry.
type CreateEntryRequest struct {
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Direction        string          `json:"direction"`
	Category         string          `json:"category"`
	DueDate          string          `json:"due_date"`
	Status           string          `json:"status,omitempty"`
	PaymentMethod    string          `json:"payment_method"`
	InstallmentIndex *int            `json:"installment_index,omitempty"`
	InstallmentTotal *int            `json:"installment_total,omitempty"`
	ClientID         string          `json:"client_id,omitempty"`
	ReceiptRef       string          `json:"receipt_ref,omitempty"`
	AttachmentRefs   []string        `json:"attachment_refs,omitempty"`
}

// ToUseCaseInput converts to use case input. Enum fields are upper-cased;
// a missing status means PENDING.
func (r *CreateEntryRequest) ToUseCaseInput() (usecase.CreateEntryInput, error) {
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return usecase.CreateEntryInput{}, fmt.Errorf("%w: %w", domain.ErrInvalidDueDate, err)
	}
	if due.IsZero() {
		return usecase.CreateEntryInput{}, domain.ErrInvalidDueDate
	}

	status := domain.Status(strings.ToUpper(r.Status))
	if status == "" {
		status = domain.StatusPending
	}

	return usecase.CreateEntryInput{
		Description:      r.Description,
		Amount:           r.Amount,
		Direction:        domain.Direction(strings.ToUpper(r.Direction)),
		Category:         domain.Category(strings.ToUpper(r.Category)),
		DueDate:          due,
		Status:           status,
		PaymentMethod:    domain.PaymentMethod(strings.ToUpper(r.PaymentMethod)),
		InstallmentIndex: r.InstallmentIndex,
		InstallmentTotal: r.InstallmentTotal,
		ClientID:         r.ClientID,
		ReceiptRef:       r.ReceiptRef,
		AttachmentRefs:   r.AttachmentRefs,
	}, nil
}

// SettlementQuoteRequest asks what settling a set of entries would do.
type SettlementQuoteRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

// ToDomain converts to a settlement request.
func (r *SettlementQuoteRequest) ToDomain() domain.SettlementRequest {
	return domain.SettlementRequest{EntryIDs: r.EntryIDs}
}

// SubmitSettlementRequest settles a set of entries. ConfirmedTotal must equal
// the quoted total.
type SubmitSettlementRequest struct {
	EntryIDs       []string        `json:"entry_ids"`
	ConfirmedTotal decimal.Decimal `json:"confirmed_total"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitSettlementRequest) ToUseCaseInput() usecase.SubmitSettlementInput {
	return usecase.SubmitSettlementInput{
		EntryIDs:       r.EntryIDs,
		ConfirmedTotal: r.ConfirmedTotal,
	}
}

// RecurringInvoiceRequest selects the period to generate invoices for.
// An empty period means the current month.
type RecurringInvoiceRequest struct {
	Period string `json:"period,omitempty"`
}

// ParseDate parses a YYYY-MM-DD date. Empty yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParsePeriod parses a YYYY-MM period. Empty yields the zero period.
func ParsePeriod(s string) (domain.Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Period{}, nil
	}
	return domain.ParsePeriod(s)
}
