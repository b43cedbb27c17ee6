package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues the ids of entries, invoices, settlements and outbox
// events. ULIDs sort by creation time, so ORDER BY id follows insertion order.
type ULIDGenerator struct{}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
