package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SettlementRequest is the set of entries a user asked to mark as paid.
type SettlementRequest struct {
	EntryIDs []string
}

// SettlementQuote is a request resolved against a snapshot: the unsettled
// subset and its total, to be confirmed before dispatch.
type SettlementQuote struct {
	EntryIDs        []string
	AlreadyPaid     []string
	Total           decimal.Decimal
	SnapshotVersion uint64
}

// Count is the number of entries that would be settled.
func (q *SettlementQuote) Count() int {
	return len(q.EntryIDs)
}

// Empty reports whether the quote resolves to nothing to settle.
func (q *SettlementQuote) Empty() bool {
	return len(q.EntryIDs) == 0
}

// ResolveSettlement deduplicates the request, rejects ids unknown to the
// snapshot and drops entries that are already paid.
func ResolveSettlement(snap *Snapshot, req SettlementRequest) (*SettlementQuote, error) {
	quote := &SettlementQuote{
		EntryIDs:    []string{},
		AlreadyPaid: []string{},
		Total:       decimal.Zero,
	}
	if snap != nil {
		quote.SnapshotVersion = snap.Version()
	}

	seen := make(map[string]struct{}, len(req.EntryIDs))
	for _, id := range req.EntryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		e, ok := snap.Entry(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}

		if e.Status == StatusPaid {
			quote.AlreadyPaid = append(quote.AlreadyPaid, id)
			continue
		}

		quote.EntryIDs = append(quote.EntryIDs, id)
		quote.Total = quote.Total.Add(e.Amount)
	}

	sort.Strings(quote.EntryIDs)
	sort.Strings(quote.AlreadyPaid)

	return quote, nil
}
