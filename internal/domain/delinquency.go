package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CollectionKind distinguishes client groups from clientless single entries.
type CollectionKind string

const (
	CollectionGroup  CollectionKind = "GROUP"
	CollectionSingle CollectionKind = "SINGLE"
)

// CollectionLine is one row of the collection list: either the rollup of a
// client's delinquent entries or a single delinquent entry without a client.
type CollectionLine struct {
	OldestDueDate  time.Time
	Kind           CollectionKind
	ClientID       string
	ClientName     string
	Description    string
	MemberEntryIDs []string
	TotalAmount    decimal.Decimal
	EntryCount     int
}

// Delinquency is the result of a grouping pass.
type Delinquency struct {
	AsOf       time.Time
	Lines      []CollectionLine
	Total      decimal.Decimal
	EntryCount int
}

// AllClear reports whether nothing is delinquent.
func (d Delinquency) AllClear() bool {
	return len(d.Lines) == 0
}

// IsDelinquent reports whether an entry is an unsettled inflow due before asOf's date.
// Both PENDING and OVERDUE count: the stored status is not trusted for lateness.
func IsDelinquent(e *Entry, asOf time.Time) bool {
	return e.Direction == DirectionInflow &&
		e.Status.Unsettled() &&
		Date(e.DueDate).Before(Date(asOf))
}

// GroupDelinquent scans the whole snapshot, independent of any period, and
// folds delinquent entries by client. Lines are ordered oldest delinquency first.
func GroupDelinquent(snap *Snapshot, asOf time.Time) Delinquency {
	result := Delinquency{
		AsOf:  Date(asOf),
		Lines: []CollectionLine{},
		Total: decimal.Zero,
	}

	groups := make(map[string]*CollectionLine)
	members := make(map[string][]*Entry)

	snap.each(func(e *Entry) {
		if !IsDelinquent(e, asOf) {
			return
		}

		result.EntryCount++
		result.Total = result.Total.Add(e.Amount)

		if !e.HasClient() {
			result.Lines = append(result.Lines, CollectionLine{
				Kind:           CollectionSingle,
				Description:    e.Description,
				TotalAmount:    e.Amount,
				EntryCount:     1,
				OldestDueDate:  e.DueDate,
				MemberEntryIDs: []string{e.ID},
			})
			return
		}

		g, ok := groups[e.ClientID]
		if !ok {
			g = &CollectionLine{
				Kind:          CollectionGroup,
				ClientID:      e.ClientID,
				ClientName:    snap.ClientName(e.ClientID),
				TotalAmount:   decimal.Zero,
				OldestDueDate: e.DueDate,
			}
			groups[e.ClientID] = g
		}

		g.TotalAmount = g.TotalAmount.Add(e.Amount)
		g.EntryCount++
		if e.DueDate.Before(g.OldestDueDate) {
			g.OldestDueDate = e.DueDate
		}
		members[e.ClientID] = append(members[e.ClientID], e)
	})

	for clientID, g := range groups {
		entries := members[clientID]
		sortByDueDate(entries)

		g.MemberEntryIDs = make([]string, len(entries))
		for i, e := range entries {
			g.MemberEntryIDs[i] = e.ID
		}
		result.Lines = append(result.Lines, *g)
	}

	sort.Slice(result.Lines, func(i, j int) bool {
		a, b := result.Lines[i], result.Lines[j]
		if !a.OldestDueDate.Equal(b.OldestDueDate) {
			return a.OldestDueDate.Before(b.OldestDueDate)
		}
		if a.ClientID != b.ClientID {
			return a.ClientID < b.ClientID
		}
		return a.MemberEntryIDs[0] < b.MemberEntryIDs[0]
	})

	return result
}

func sortByDueDate(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].DueDate.Equal(entries[j].DueDate) {
			return entries[i].DueDate.Before(entries[j].DueDate)
		}
		return entries[i].ID < entries[j].ID
	})
}
