package domain

import (
	"fmt"
	"sort"
	"strings"
)

// QuickFilter is the single active selector of the statement.
type QuickFilter string

const (
	FilterAll     QuickFilter = "ALL"
	FilterInflow  QuickFilter = "INFLOW"
	FilterOutflow QuickFilter = "OUTFLOW"
)

// ParseQuickFilter accepts ALL, INFLOW, OUTFLOW or a category name. Empty means ALL.
func ParseQuickFilter(s string) (QuickFilter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	switch QuickFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterInflow, FilterOutflow:
		return QuickFilter(s), nil
	}

	if Category(s).Valid() {
		return QuickFilter(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Matches applies the selector to one entry.
func (f QuickFilter) Matches(e *Entry) bool {
	switch f {
	case "", FilterAll:
		return true
	case FilterInflow:
		return e.Direction == DirectionInflow
	case FilterOutflow:
		return e.Direction == DirectionOutflow
	default:
		return e.Category == Category(f)
	}
}

// StatementFilter combines the free-text query with the quick filter.
type StatementFilter struct {
	Query string
	Quick QuickFilter
}

// FilterStatement returns copies of the period's entries matching the filter,
// most recent due date first, ties by id.
func FilterStatement(snap *Snapshot, period Period, filter StatementFilter) []*Entry {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := []*Entry{}

	snap.each(func(e *Entry) {
		if !period.Contains(e.DueDate) || !filter.Quick.Matches(e) {
			return
		}

		if query != "" && !matchesQuery(e, snap.ClientName(e.ClientID), query) {
			return
		}

		result = append(result, e.Clone())
	})

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.After(result[j].DueDate)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

func matchesQuery(e *Entry, clientName, query string) bool {
	if strings.Contains(strings.ToLower(e.Description), query) {
		return true
	}
	return clientName != "" && strings.Contains(strings.ToLower(clientName), query)
}
