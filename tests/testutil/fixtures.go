package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/postgres"
	"github.com/iho/cashbook/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and migrates it. The test is skipped
// under -short or when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	db.TruncateAll(ctx)
	t.Cleanup(pool.Close)

	return db
}

// migrationsPath finds the migrations directory next to go.mod.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE outbox_events, entries, contracts, clients CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateClient inserts a client.
func (db *TestDB) CreateClient(ctx context.Context, name string) domain.Client {
	db.t.Helper()

	c := domain.Client{ID: GenerateID(), DisplayName: name}
	if _, err := db.Pool.Exec(ctx, `INSERT INTO clients (id, display_name) VALUES ($1, $2)`, c.ID, c.DisplayName); err != nil {
		db.t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// ContractFixture describes a contract row.
type ContractFixture struct {
	ClientID    string
	Description string
	Amount      decimal.Decimal
	DueDay      int
	StartsOn    time.Time
	EndsOn      *time.Time
}

// CreateContract inserts an active contract and returns its id.
func (db *TestDB) CreateContract(ctx context.Context, c ContractFixture) string {
	db.t.Helper()

	id := GenerateID()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO contracts (id, client_id, description, amount, due_day, payment_method, starts_on, ends_on)
		VALUES ($1, $2, $3, $4, $5, 'PIX', $6, $7)`,
		id, c.ClientID, c.Description, c.Amount.String(), c.DueDay, c.StartsOn, c.EndsOn)
	if err != nil {
		db.t.Fatalf("failed to create contract: %v", err)
	}
	return id
}

// EntryOption customizes CreateEntry.
type EntryOption func(*domain.Entry)

func WithClient(id string) EntryOption {
	return func(e *domain.Entry) { e.ClientID = id }
}

func WithStatus(s domain.Status) EntryOption {
	return func(e *domain.Entry) { e.Status = s }
}

func WithCategory(c domain.Category) EntryOption {
	return func(e *domain.Entry) { e.Category = c }
}

// CreateEntry inserts a PENDING PIX entry of the GENERIC category.
func (db *TestDB) CreateEntry(ctx context.Context, amount string, dir domain.Direction, due time.Time, opts ...EntryOption) *domain.Entry {
	db.t.Helper()

	e := &domain.Entry{
		ID:            GenerateID(),
		Description:   "entry " + amount,
		Amount:        decimal.RequireFromString(amount),
		Direction:     dir,
		Category:      domain.CategoryGeneric,
		DueDate:       due,
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentPix,
		CreatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var numeric pgtype.Numeric
	_ = numeric.Scan(e.Amount.String())

	err := db.Queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:             e.ID,
		Description:    e.Description,
		Amount:         numeric,
		Direction:      string(e.Direction),
		Category:       string(e.Category),
		DueDate:        pgtype.Date{Time: e.DueDate, Valid: true},
		Status:         string(e.Status),
		PaymentMethod:  string(e.PaymentMethod),
		ClientID:       pgtype.Text{String: e.ClientID, Valid: e.ClientID != ""},
		AttachmentRefs: []string{},
		CreatedAt:      pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	})
	if err != nil {
		db.t.Fatalf("failed to create entry: %v", err)
	}

	return e
}

// EntryStatus reads the stored status of an entry.
func (db *TestDB) EntryStatus(ctx context.Context, id string) domain.Status {
	db.t.Helper()

	row, err := db.Queries.GetEntryByID(ctx, id)
	if err != nil {
		db.t.Fatalf("failed to read entry %s: %v", id, err)
	}
	return domain.Status(row.Status)
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
