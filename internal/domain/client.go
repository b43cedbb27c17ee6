package domain

// Client is a customer referenced by entries. The ledger never creates or mutates clients.
type Client struct {
	ID          string
	DisplayName string
}
