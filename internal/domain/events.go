package domain

import "time"

// Event types
const (
	EventTypeEntryCreated      = "entry.created"
	EventTypeEntryDeleted      = "entry.deleted"
	EventTypeEntriesSettled    = "entries.settled"
	EventTypeInvoicesGenerated = "invoices.generated"
)

// Aggregate types
const (
	AggregateTypeEntry      = "entry"
	AggregateTypeSettlement = "settlement"
	AggregateTypePeriod     = "period"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
