package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
	"github.com/iho/cashbook/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository. db is usually a *pgxpool.Pool.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		queries: generated.New(db),
	}
}

// List returns every entry, or only those due within hint when it is set.
func (r *EntryRepository) List(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error) {
	var (
		rows []generated.Entry
		err  error
	)

	if hint == nil {
		rows, err = r.queries.ListEntries(ctx)
	} else {
		rows, err = r.queries.ListEntriesDueBetween(ctx, generated.ListEntriesDueBetweenParams{
			FromDate: dateToPgDate(hint.Start()),
			ToDate:   dateToPgDate(hint.End()),
		})
	}
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// GetByIDsForUpdate locks the existing entries among ids, in id order.
func (r *EntryRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Entry, error) {
	rows, err := txQueries(tx).GetEntriesByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// MarkPaid settles the unpaid entries among ids and returns how many changed.
func (r *EntryRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, ids []string, paidAt time.Time) (int64, error) {
	return txQueries(tx).MarkEntriesPaid(ctx, generated.MarkEntriesPaidParams{
		PaidAt: timeToPgTimestamptz(paidAt),
		Ids:    ids,
	})
}

// Create inserts a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	attachments := entry.AttachmentRefs
	if attachments == nil {
		attachments = []string{}
	}

	err := txQueries(tx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:               entry.ID,
		Description:      entry.Description,
		Amount:           decimalToNumeric(entry.Amount),
		Direction:        string(entry.Direction),
		Category:         string(entry.Category),
		DueDate:          dateToPgDate(entry.DueDate),
		Status:           string(entry.Status),
		PaymentMethod:    string(entry.PaymentMethod),
		InstallmentIndex: intPtrToInt4(entry.InstallmentIndex),
		InstallmentTotal: intPtrToInt4(entry.InstallmentTotal),
		ClientID:         textOrNull(entry.ClientID),
		ContractID:       textOrNull(entry.ContractID),
		ReceiptRef:       entry.ReceiptRef,
		AttachmentRefs:   attachments,
		PaidAt:           timePtrToPgTimestamptz(entry.PaidAt),
		CreatedAt:        timeToPgTimestamptz(entry.CreatedAt),
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEntry, entry.ID)
	}

	return err
}

// Delete removes an unpaid entry.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := txQueries(tx).DeleteUnpaidEntry(ctx, id)
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

func rowsToEntries(rows []generated.Entry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries
}

func rowToEntry(row generated.Entry) *domain.Entry {
	var attachments []string
	if len(row.AttachmentRefs) > 0 {
		attachments = row.AttachmentRefs
	}

	return &domain.Entry{
		ID:               row.ID,
		Description:      row.Description,
		Amount:           numericToDecimal(row.Amount),
		Direction:        domain.Direction(row.Direction),
		Category:         domain.Category(row.Category),
		DueDate:          pgDateToTime(row.DueDate),
		Status:           domain.Status(row.Status),
		PaymentMethod:    domain.PaymentMethod(row.PaymentMethod),
		InstallmentIndex: int4ToIntPtr(row.InstallmentIndex),
		InstallmentTotal: int4ToIntPtr(row.InstallmentTotal),
		ClientID:         row.ClientID.String,
		ContractID:       row.ContractID.String,
		ReceiptRef:       row.ReceiptRef,
		AttachmentRefs:   attachments,
		PaidAt:           pgTimestamptzToTimePtr(row.PaidAt),
		CreatedAt:        row.CreatedAt.Time,
	}
}
