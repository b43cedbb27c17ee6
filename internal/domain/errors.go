package domain

import "errors"

var (
	// Entry errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrEmptyDescription     = errors.New("description is required")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDueDate       = errors.New("due date is required")
	ErrInvalidInstallment   = errors.New("installment index must be between 1 and installment total")
	ErrTooManyAttachments   = errors.New("too many attachments")
	ErrEntryNotFound        = errors.New("entry not found")
	ErrEntryPaid            = errors.New("entry is already paid")
	ErrMissingEntryID       = errors.New("entry id is missing")
	ErrDuplicateEntry       = errors.New("duplicate entry id")

	// View errors
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidFilter = errors.New("invalid quick filter")

	// Settlement errors
	ErrSettlementUnconfirmed = errors.New("settlement total was not confirmed")
	ErrSettlementInProgress  = errors.New("settlement already in progress for one or more entries")
	ErrSettlementFailed      = errors.New("settlement failed, nothing was changed")

	// Snapshot errors
	ErrSnapshotUnavailable = errors.New("ledger snapshot unavailable")
	ErrSnapshotSuperseded  = errors.New("ledger snapshot superseded by a newer fetch")
)

// IsValidationError reports whether err is a local validation failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrEmptyDescription,
		ErrInvalidDirection,
		ErrInvalidCategory,
		ErrInvalidStatus,
		ErrInvalidPaymentMethod,
		ErrInvalidDueDate,
		ErrInvalidInstallment,
		ErrTooManyAttachments,
		ErrInvalidPeriod,
		ErrInvalidFilter,
		ErrSettlementUnconfirmed,
		ErrAmountTooLarge,
		ErrAmountTooSmall,
		ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
