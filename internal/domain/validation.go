package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrDescriptionTooLong = errors.New("description too long")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxEntryAmount       = "1000000000" // 1 billion
	MinEntryAmount       = "0.01"
	// AmountScale is the fixed-point scale of currency amounts.
	AmountScale = 2
)

var (
	maxEntryAmount = decimal.RequireFromString(MaxEntryAmount)
	minEntryAmount = decimal.RequireFromString(MinEntryAmount)
)

// ValidateDescription validates the free-text description.
func ValidateDescription(description string) error {
	description = strings.TrimSpace(description)

	if description == "" {
		return ErrEmptyDescription
	}

	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateAmount validates an entry amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.LessThan(minEntryAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinEntryAmount)
	}

	if amount.GreaterThan(maxEntryAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEntryAmount)
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}

	return nil
}

// ValidateInstallment validates an optional installment pair.
func ValidateInstallment(index, total *int) error {
	if index != nil && *index < 1 {
		return ErrInvalidInstallment
	}

	if total != nil && *total < 1 {
		return ErrInvalidInstallment
	}

	if index != nil && total != nil && *index > *total {
		return ErrInvalidInstallment
	}

	return nil
}
