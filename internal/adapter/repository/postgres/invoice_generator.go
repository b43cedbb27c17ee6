package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
	"github.com/iho/cashbook/internal/usecase"
)

// ContractInvoiceGenerator implements usecase.InvoiceGenerator by materializing
// one INFLOW/CONTRACT entry per active contract and period.
type ContractInvoiceGenerator struct {
	idGen usecase.IDGenerator
}

// NewContractInvoiceGenerator creates a new ContractInvoiceGenerator.
func NewContractInvoiceGenerator(idGen usecase.IDGenerator) *ContractInvoiceGenerator {
	return &ContractInvoiceGenerator{idGen: idGen}
}

// Generate inserts the period's invoices that do not exist yet and returns how
// many were inserted.
func (g *ContractInvoiceGenerator) Generate(ctx context.Context, tx usecase.Transaction, period domain.Period, createdAt time.Time) (int, error) {
	queries := txQueries(tx)

	contracts, err := queries.ListActiveContracts(ctx, generated.ListActiveContractsParams{
		PeriodStart: dateToPgDate(period.Start()),
		PeriodEnd:   dateToPgDate(period.End()),
	})
	if err != nil {
		return 0, fmt.Errorf("list contracts: %w", err)
	}

	inserted := 0
	for _, c := range contracts {
		due := invoiceDueDate(period, int(c.DueDay))
		if !contractCovers(c, due) {
			continue
		}

		n, err := queries.CreateContractInvoice(ctx, invoiceParams(c, g.idGen.Generate(), period, due, createdAt))
		if err != nil {
			return 0, fmt.Errorf("contract %s: %w", c.ID, err)
		}
		inserted += int(n)
	}

	return inserted, nil
}

func invoiceParams(c generated.Contract, id string, period domain.Period, due, createdAt time.Time) generated.CreateContractInvoiceParams {
	return generated.CreateContractInvoiceParams{
		ID:            id,
		Description:   fmt.Sprintf("%s %s", c.Description, period),
		Amount:        c.Amount,
		DueDate:       dateToPgDate(due),
		PaymentMethod: c.PaymentMethod,
		ClientID:      textOrNull(c.ClientID),
		ContractID:    textOrNull(c.ID),
		CreatedAt:     timeToPgTimestamptz(createdAt),
	}
}

// invoiceDueDate places dueDay in period, clamped to the month's last day.
func invoiceDueDate(period domain.Period, dueDay int) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	if days := period.Days(); dueDay > days {
		dueDay = days
	}
	return domain.NewDate(period.Year, period.Month, dueDay)
}

func contractCovers(c generated.Contract, due time.Time) bool {
	if c.StartsOn.Valid && due.Before(pgDateToTime(c.StartsOn)) {
		return false
	}
	if c.EndsOn.Valid && due.After(pgDateToTime(c.EndsOn)) {
		return false
	}
	return true
}
