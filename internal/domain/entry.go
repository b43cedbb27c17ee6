package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether an entry is revenue or expense.
type Direction string

const (
	DirectionInflow  Direction = "INFLOW"
	DirectionOutflow Direction = "OUTFLOW"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionInflow || d == DirectionOutflow
}

// Category classifies an entry for charting and quick filters.
type Category string

const (
	CategoryContract Category = "CONTRACT"
	CategoryService  Category = "SERVICE"
	CategoryPurchase Category = "PURCHASE"
	CategoryTax      Category = "TAX"
	CategoryPayroll  Category = "PAYROLL"
	CategoryGeneric  Category = "GENERIC"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryContract,
	CategoryService,
	CategoryPurchase,
	CategoryTax,
	CategoryPayroll,
	CategoryGeneric,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return categoryRank(c) >= 0
}

func categoryRank(c Category) int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// Status is the settlement state of an entry. PAID is terminal.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusOverdue Status = "OVERDUE"
	StatusPaid    Status = "PAID"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOverdue, StatusPaid:
		return true
	}
	return false
}

// Unsettled reports whether the entry still awaits payment.
func (s Status) Unsettled() bool {
	return s == StatusPending || s == StatusOverdue
}

// PaymentMethod is how an entry is (or will be) paid.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentPix        PaymentMethod = "PIX"
	PaymentBankSlip   PaymentMethod = "BANK_SLIP"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentTransfer   PaymentMethod = "TRANSFER"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentBankSlip, PaymentCreditCard, PaymentDebitCard, PaymentTransfer:
		return true
	}
	return false
}

// MaxAttachments is the number of opaque attachment references an entry may carry.
const MaxAttachments = 2

// Entry is a single ledger line: revenue (INFLOW) or expense (OUTFLOW).
type Entry struct {
	DueDate          time.Time
	CreatedAt        time.Time
	PaidAt           *time.Time
	InstallmentIndex *int
	InstallmentTotal *int
	ID               string
	Description      string
	ClientID         string
	ContractID       string
	ReceiptRef       string
	Direction        Direction
	Category         Category
	Status           Status
	PaymentMethod    PaymentMethod
	AttachmentRefs   []string
	Amount           decimal.Decimal
}

// HasClient reports whether the entry is linked to a client.
func (e *Entry) HasClient() bool {
	return e.ClientID != ""
}

// ValidateDraft checks a new entry: the invariants of Validate plus the
// description and amount limits applied to user input.
func (e *Entry) ValidateDraft() error {
	if err := ValidateDescription(e.Description); err != nil {
		return err
	}

	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}

	return e.Validate()
}

// Validate checks the invariants every stored entry must hold.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}

	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !e.Amount.Equal(e.Amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}

	if !e.Direction.Valid() {
		return ErrInvalidDirection
	}

	if !e.Category.Valid() {
		return ErrInvalidCategory
	}

	if !e.Status.Valid() {
		return ErrInvalidStatus
	}

	if !e.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}

	if e.DueDate.IsZero() {
		return ErrInvalidDueDate
	}

	if err := ValidateInstallment(e.InstallmentIndex, e.InstallmentTotal); err != nil {
		return err
	}

	if len(e.AttachmentRefs) > MaxAttachments {
		return ErrTooManyAttachments
	}

	if e.PaidAt != nil && e.Status != StatusPaid {
		return ErrInvalidStatus
	}

	return nil
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.PaidAt != nil {
		t := *e.PaidAt
		c.PaidAt = &t
	}
	if e.InstallmentIndex != nil {
		i := *e.InstallmentIndex
		c.InstallmentIndex = &i
	}
	if e.InstallmentTotal != nil {
		i := *e.InstallmentTotal
		c.InstallmentTotal = &i
	}
	if e.AttachmentRefs != nil {
		c.AttachmentRefs = append([]string(nil), e.AttachmentRefs...)
	}
	return &c
}

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a UTC calendar date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
