package postgres

import (
	"context"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
)

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	queries *generated.Queries
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db generated.DBTX) *ClientRepository {
	return &ClientRepository{queries: generated.New(db)}
}

// List returns the client directory.
func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.queries.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, domain.Client{ID: row.ID, DisplayName: row.DisplayName})
	}

	return clients, nil
}
