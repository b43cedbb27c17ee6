package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount is the inflow total of one category.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// ClientRanking is the site-visit cost of one client.
type ClientRanking struct {
	ClientID   string
	ClientName string
	TotalCost  decimal.Decimal
	VisitCount int
}

// Summary holds the period KPIs.
type Summary struct {
	Period             Period
	InflowTotal        decimal.Decimal
	OutflowTotal       decimal.Decimal
	NetResult          decimal.Decimal
	CategoryBreakdown  []CategoryAmount
	OperationalRanking []ClientRanking
	EntryCount         int
}

// Summarize computes the KPIs of a period. Only entries due inside the period
// contribute. The result does not depend on the snapshot's entry order.
//
// The category breakdown covers inflow entries only and is ordered by amount
// descending, ties by category declaration order. The operational ranking
// counts SERVICE entries linked to a client, ordered by visit count descending,
// ties by client id ascending.
func Summarize(snap *Snapshot, period Period) Summary {
	summary := Summary{
		Period:             period,
		InflowTotal:        decimal.Zero,
		OutflowTotal:       decimal.Zero,
		NetResult:          decimal.Zero,
		CategoryBreakdown:  []CategoryAmount{},
		OperationalRanking: []ClientRanking{},
	}

	byCategory := make(map[Category]decimal.Decimal)
	byClient := make(map[string]*ClientRanking)

	snap.each(func(e *Entry) {
		if !period.Contains(e.DueDate) {
			return
		}

		summary.EntryCount++

		switch e.Direction {
		case DirectionInflow:
			summary.InflowTotal = summary.InflowTotal.Add(e.Amount)
			byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		case DirectionOutflow:
			summary.OutflowTotal = summary.OutflowTotal.Add(e.Amount)
		}

		if e.Category == CategoryService && e.HasClient() {
			r, ok := byClient[e.ClientID]
			if !ok {
				r = &ClientRanking{
					ClientID:   e.ClientID,
					ClientName: snap.ClientName(e.ClientID),
					TotalCost:  decimal.Zero,
				}
				byClient[e.ClientID] = r
			}
			r.VisitCount++
			r.TotalCost = r.TotalCost.Add(e.Amount)
		}
	})

	summary.NetResult = summary.InflowTotal.Sub(summary.OutflowTotal)

	for category, amount := range byCategory {
		summary.CategoryBreakdown = append(summary.CategoryBreakdown, CategoryAmount{
			Category: category,
			Amount:   amount,
		})
	}
	sort.Slice(summary.CategoryBreakdown, func(i, j int) bool {
		a, b := summary.CategoryBreakdown[i], summary.CategoryBreakdown[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return categoryRank(a.Category) < categoryRank(b.Category)
	})

	for _, r := range byClient {
		summary.OperationalRanking = append(summary.OperationalRanking, *r)
	}
	sort.Slice(summary.OperationalRanking, func(i, j int) bool {
		a, b := summary.OperationalRanking[i], summary.OperationalRanking[j]
		if a.VisitCount != b.VisitCount {
			return a.VisitCount > b.VisitCount
		}
		return a.ClientID < b.ClientID
	})

	return summary
}
