package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
)

const refreshKey = "entries"

// SnapshotConfig tunes the entry store refresh.
type SnapshotConfig struct {
	// FetchTimeout bounds one shared fetch, independent of any waiter.
	FetchTimeout time.Duration
	// MaxAge lets Latest reuse a snapshot younger than this. Zero always refetches.
	MaxAge time.Duration
}

// Freshness describes how current the served snapshot is.
type Freshness struct {
	LastError   error
	LastFailure time.Time
	FetchedAt   time.Time
	Stale       bool
}

// SnapshotStore owns the last-known-good snapshot of the entry store.
// Concurrent refreshes share one fetch, and a fetch result is applied only
// when no newer fetch has been issued since it started.
type SnapshotStore struct {
	entryRepo  EntryRepository
	clientRepo ClientRepository
	cfg        SnapshotConfig
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	group  singleflight.Group
	issued atomic.Uint64

	mu        sync.RWMutex
	current   *domain.Snapshot
	lastErr   error
	lastErrAt time.Time
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(
	entryRepo EntryRepository,
	clientRepo ClientRepository,
	cfg SnapshotConfig,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *SnapshotStore {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultSnapshotFetchTimeout
	}

	return &SnapshotStore{
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
		cfg:        cfg,
		logger:     logger.With().Str("component", "snapshot_store").Logger(),
		metrics:    metrics,
	}
}

// Current returns the last applied snapshot, nil before the first success.
func (s *SnapshotStore) Current() (*domain.Snapshot, Freshness) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.freshnessLocked()
}

func (s *SnapshotStore) freshnessLocked() Freshness {
	f := Freshness{
		LastError:   s.lastErr,
		LastFailure: s.lastErrAt,
		Stale:       s.lastErr != nil,
	}
	if s.current != nil {
		f.FetchedAt = s.current.FetchedAt()
	}
	return f
}

// Refresh fetches the entry store, joining a fetch already in flight.
func (s *SnapshotStore) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		return s.fetch()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Snapshot), nil
	}
}

// ForceRefresh starts a fetch that begins after the call, never joining one
// that may have read the store before a write the caller just committed.
func (s *SnapshotStore) ForceRefresh(ctx context.Context) (*domain.Snapshot, error) {
	s.group.Forget(refreshKey)

	snap, err := s.Refresh(ctx)
	if errors.Is(err, domain.ErrSnapshotSuperseded) {
		// a newer fetch was issued after ours and also post-dates the write
		return s.Refresh(ctx)
	}
	return snap, err
}

// Latest returns a snapshot for building views. A recent enough snapshot is
// reused; otherwise the store is refetched. When the fetch fails the
// last-known-good snapshot is returned marked stale, and
// domain.ErrSnapshotUnavailable when there is none.
func (s *SnapshotStore) Latest(ctx context.Context) (*domain.Snapshot, Freshness, error) {
	if snap, fresh := s.Current(); snap != nil && !fresh.Stale && s.cfg.MaxAge > 0 &&
		time.Since(snap.FetchedAt()) < s.cfg.MaxAge {
		return snap, fresh, nil
	}

	snap, err := s.Refresh(ctx)
	if errors.Is(err, domain.ErrSnapshotSuperseded) {
		snap, err = s.Refresh(ctx)
	}

	if err == nil {
		_, fresh := s.Current()
		fresh.FetchedAt = snap.FetchedAt()
		return snap, fresh, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, Freshness{}, ctxErr
	}

	current, fresh := s.Current()
	if current == nil {
		return nil, fresh, fmt.Errorf("%w: %w", domain.ErrSnapshotUnavailable, err)
	}

	fresh.Stale = true
	if fresh.LastError == nil {
		fresh.LastError = err
	}
	return current, fresh, nil
}

func (s *SnapshotStore) fetch() (*domain.Snapshot, error) {
	stamp := s.issued.Add(1)
	start := time.Now()

	// Shared by every waiter, so no single caller's cancellation may abort it.
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
	defer cancel()

	entries, err := s.entryRepo.List(ctx, nil)
	if err != nil {
		return nil, s.fail(stamp, fmt.Errorf("fetch entries: %w", err))
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, s.fail(stamp, fmt.Errorf("fetch clients: %w", err))
	}

	snap, rejected := domain.NewSnapshot(stamp, time.Now().UTC(), entries, clients)
	for _, r := range rejected {
		s.logger.Warn().Err(r.Err).Str("entry_id", r.EntryID).Msg("malformed entry excluded from snapshot")
	}

	if s.metrics != nil {
		s.metrics.SnapshotRefreshDuration.Observe(time.Since(start).Seconds())
		s.metrics.SnapshotRejectedEntries.Add(float64(len(rejected)))
	}

	return s.apply(stamp, snap)
}

func (s *SnapshotStore) apply(stamp uint64, snap *domain.Snapshot) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stamp != s.issued.Load() {
		s.logger.Debug().Uint64("stamp", stamp).Msg("discarding superseded snapshot")
		s.observe("superseded")
		return nil, domain.ErrSnapshotSuperseded
	}

	s.current = snap
	s.lastErr = nil
	s.lastErrAt = time.Time{}

	if s.metrics != nil {
		s.metrics.SnapshotEntries.Set(float64(snap.Len()))
		s.metrics.SnapshotStale.Set(0)
	}
	s.observe("success")

	return snap, nil
}

func (s *SnapshotStore) fail(stamp uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observe("failure")

	// only the latest fetch decides whether the served snapshot is stale
	if stamp != s.issued.Load() {
		return err
	}

	s.lastErr = err
	s.lastErrAt = time.Now().UTC()

	if s.metrics != nil && s.current != nil {
		s.metrics.SnapshotStale.Set(1)
	}

	s.logger.Warn().Err(err).Bool("has_snapshot", s.current != nil).Msg("entry store refresh failed")

	return err
}

func (s *SnapshotStore) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.SnapshotRefreshes.WithLabelValues(outcome).Inc()
	}
}
