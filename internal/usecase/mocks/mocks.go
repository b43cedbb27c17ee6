package mocks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// FakeTx is an in-memory transaction. Writes staged by the fakes in this
// package become visible only on Commit.
type FakeTx struct {
	mu         sync.Mutex
	staged     []func()
	CommitErr  error
	Committed  bool
	RolledBack bool
}

func (t *FakeTx) stage(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.staged = append(t.staged, fn)
}

func (t *FakeTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.CommitErr != nil {
		return t.CommitErr
	}
	for _, fn := range t.staged {
		fn()
	}
	t.staged = nil
	t.Committed = true
	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Committed {
		return nil
	}
	t.staged = nil
	t.RolledBack = true
	return nil
}

// stageOn runs fn at commit when tx is a FakeTx, immediately otherwise.
func stageOn(tx usecase.Transaction, fn func()) {
	if ftx, ok := tx.(*FakeTx); ok {
		ftx.stage(fn)
		return
	}
	fn()
}

// FakeTxManager hands out FakeTx values and remembers them.
type FakeTxManager struct {
	mu  sync.Mutex
	txs []*FakeTx

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewFakeTxManager() *FakeTxManager {
	return &FakeTxManager{}
}

func (m *FakeTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &FakeTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

// Txs returns every transaction begun so far.
func (m *FakeTxManager) Txs() []*FakeTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*FakeTx(nil), m.txs...)
}

// FakeEntryRepository is an in-memory EntryRepository.
type FakeEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry
	order   []string

	listCalls atomic.Int64

	ListFunc              func(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Entry, error)
	MarkPaidFunc          func(ctx context.Context, tx usecase.Transaction, ids []string, paidAt time.Time) (int64, error)
	BeforeMarkPaid        func(ctx context.Context) error
	CreateFunc            func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	DeleteFunc            func(ctx context.Context, tx usecase.Transaction, id string) error
}

func NewFakeEntryRepository(entries ...*domain.Entry) *FakeEntryRepository {
	m := &FakeEntryRepository{entries: make(map[string]*domain.Entry)}
	for _, e := range entries {
		m.Put(e)
	}
	return m
}

// Put stores a copy of e, replacing any entry with the same id.
func (m *FakeEntryRepository) Put(e *domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e.Clone()
}

// Get returns a copy of the stored entry, nil when absent.
func (m *FakeEntryRepository) Get(id string) *domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e.Clone()
	}
	return nil
}

// ListCalls is the number of List calls served.
func (m *FakeEntryRepository) ListCalls() int {
	return int(m.listCalls.Load())
}

func (m *FakeEntryRepository) List(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error) {
	m.listCalls.Add(1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, hint)
	}
	return m.Snapshot(hint), nil
}

// Snapshot returns copies of the stored entries in insertion order.
func (m *FakeEntryRepository) Snapshot(hint *domain.Period) []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Entry, 0, len(m.order))
	for _, id := range m.order {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		if hint != nil && !hint.Contains(e.DueDate) {
			continue
		}
		out = append(out, e.Clone())
	}
	return out
}

func (m *FakeEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if e := m.Get(id); e != nil {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *FakeEntryRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Entry, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	var out []*domain.Entry
	for _, id := range ids {
		if e := m.Get(id); e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *FakeEntryRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, ids []string, paidAt time.Time) (int64, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, tx, ids, paidAt)
	}
	if m.BeforeMarkPaid != nil {
		if err := m.BeforeMarkPaid(ctx); err != nil {
			return 0, err
		}
	}

	var pending []string
	m.mu.RLock()
	for _, id := range ids {
		if e, ok := m.entries[id]; ok && e.Status != domain.StatusPaid {
			pending = append(pending, id)
		}
	}
	m.mu.RUnlock()

	stageOn(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, id := range pending {
			if e, ok := m.entries[id]; ok {
				at := paidAt
				e.Status = domain.StatusPaid
				e.PaidAt = &at
			}
		}
	})

	return int64(len(pending)), nil
}

func (m *FakeEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	if m.Get(entry.ID) != nil {
		return domain.ErrDuplicateEntry
	}
	e := entry.Clone()
	stageOn(tx, func() { m.Put(e) })
	return nil
}

func (m *FakeEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	if m.Get(id) == nil {
		return domain.ErrEntryNotFound
	}
	stageOn(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.entries, id)
	})
	return nil
}

// FakeClientRepository is a fixed client directory.
type FakeClientRepository struct {
	Clients  []domain.Client
	ListFunc func(ctx context.Context) ([]domain.Client, error)
}

func NewFakeClientRepository(clients ...domain.Client) *FakeClientRepository {
	return &FakeClientRepository{Clients: clients}
}

func (m *FakeClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return append([]domain.Client(nil), m.Clients...), nil
}

// FakeOutboxRepository is an in-memory OutboxRepository.
type FakeOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewFakeOutboxRepository() *FakeOutboxRepository {
	return &FakeOutboxRepository{}
}

func (m *FakeOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	stageOn(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events = append(m.events, event)
	})
	return nil
}

// Events returns the committed events.
func (m *FakeOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *FakeOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *FakeOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *FakeOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// SequenceIDGenerator returns prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	Prefix string
	n      atomic.Int64
}

func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{Prefix: prefix}
}

func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}

// FakeLocker is an in-process SettlementLocker.
type FakeLocker struct {
	mu    sync.Mutex
	owner map[string]string

	AcquireFunc func(ctx context.Context, token string, ids []string, ttl time.Duration) (bool, error)
}

func NewFakeLocker() *FakeLocker {
	return &FakeLocker{owner: make(map[string]string)}
}

func (l *FakeLocker) Acquire(ctx context.Context, token string, ids []string, ttl time.Duration) (bool, error) {
	if l.AcquireFunc != nil {
		return l.AcquireFunc(ctx, token, ids, ttl)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if owner, ok := l.owner[id]; ok && owner != token {
			return false, nil
		}
	}
	for _, id := range ids {
		l.owner[id] = token
	}
	return true, nil
}

func (l *FakeLocker) Release(ctx context.Context, token string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if l.owner[id] == token {
			delete(l.owner, id)
		}
	}
	return nil
}

// Held returns the number of ids currently locked.
func (l *FakeLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.owner)
}
