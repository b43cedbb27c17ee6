package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
	"github.com/iho/cashbook/internal/usecase"
)

func TestSnapshotStore_RefreshBuildsSnapshot(t *testing.T) {
	repo := ledger()
	store := newStore(repo, clients())

	current, _ := store.Current()
	assert.Nil(t, current)

	snap, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Len())
	assert.Equal(t, "Acme Corp", snap.ClientName("A"))

	current, fresh := store.Current()
	assert.Same(t, snap, current)
	assert.False(t, fresh.Stale)
}

func TestSnapshotStore_ExcludesMalformedEntries(t *testing.T) {
	repo := ledger()
	bad := entry("bad", 10, domain.DirectionInflow, feb1, "", domain.StatusPending)
	bad.Amount = decimal.Zero
	repo.Put(bad)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	store := usecase.NewSnapshotStore(repo, clients(), usecase.SnapshotConfig{}, zerolog.Nop(), m)

	snap, err := store.Refresh(context.Background())
	require.NoError(t, err)

	_, ok := snap.Entry("bad")
	assert.False(t, ok)
	assert.Equal(t, 4, snap.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SnapshotRejectedEntries))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.SnapshotEntries))
}

func TestSnapshotStore_CoalescesConcurrentRefreshes(t *testing.T) {
	repo := ledger()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	repo.ListFunc = func(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error) {
		once.Do(func() { close(started) })
		<-release
		return repo.Snapshot(hint), nil
	}

	store := newStore(repo, clients())

	const callers = 5
	results := make(chan *domain.Snapshot, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, err := store.Refresh(context.Background())
		assert.NoError(t, err)
		results <- snap
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := store.Refresh(context.Background())
			assert.NoError(t, err)
			results <- snap
		}()
	}

	// let the late callers join the flight before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	assert.Equal(t, 1, repo.ListCalls())

	var first *domain.Snapshot
	for snap := range results {
		if first == nil {
			first = snap
		}
		assert.Same(t, first, snap)
	}
}

func TestSnapshotStore_DiscardsSupersededFetch(t *testing.T) {
	repo := ledger()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	repo.ListFunc = func(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return repo.Snapshot(hint), nil
	}

	store := newStore(repo, clients())

	slow := make(chan error, 1)
	go func() {
		_, err := store.Refresh(context.Background())
		slow <- err
	}()
	<-started

	fresh, err := store.ForceRefresh(context.Background())
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-slow, domain.ErrSnapshotSuperseded)

	current, _ := store.Current()
	assert.Same(t, fresh, current, "the older fetch must not overwrite the newer snapshot")
	assert.Equal(t, uint64(2), current.Version())
}

func TestSnapshotStore_FailureKeepsLastKnownGood(t *testing.T) {
	repo := ledger()
	var failing atomic.Bool
	repo.ListFunc = func(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error) {
		if failing.Load() {
			return nil, errors.New("connection refused")
		}
		return repo.Snapshot(hint), nil
	}

	store := newStore(repo, clients())

	good, err := store.Refresh(context.Background())
	require.NoError(t, err)

	failing.Store(true)
	_, err = store.Refresh(context.Background())
	require.Error(t, err)

	current, fresh := store.Current()
	assert.Same(t, good, current)
	assert.True(t, fresh.Stale)
	assert.ErrorContains(t, fresh.LastError, "connection refused")

	snap, fresh, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Same(t, good, snap)
	assert.True(t, fresh.Stale)

	failing.Store(false)
	_, fresh, err = store.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, fresh.Stale)
}

func TestSnapshotStore_UnavailableWithoutSnapshot(t *testing.T) {
	repo := ledger()
	repo.ListFunc = func(context.Context, *domain.Period) ([]*domain.Entry, error) {
		return nil, errors.New("timeout")
	}

	store := newStore(repo, clients())

	_, _, err := store.Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotUnavailable)
}

func TestSnapshotStore_ClientFailureIsAFetchFailure(t *testing.T) {
	clientRepo := clients()
	clientRepo.ListFunc = func(context.Context) ([]domain.Client, error) {
		return nil, errors.New("clients unavailable")
	}

	store := newStore(ledger(), clientRepo)

	_, err := store.Refresh(context.Background())
	assert.ErrorContains(t, err, "fetch clients")
}

func TestSnapshotStore_WaiterCancellationDoesNotAbortFetch(t *testing.T) {
	repo := ledger()
	started := make(chan struct{})
	release := make(chan struct{})
	fetchErr := make(chan error, 1)

	repo.ListFunc = func(ctx context.Context, hint *domain.Period) ([]*domain.Entry, error) {
		close(started)
		<-release
		fetchErr <- ctx.Err()
		return repo.Snapshot(hint), nil
	}

	store := newStore(repo, clients())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := store.Refresh(ctx)
		done <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.NoError(t, <-fetchErr)

	require.Eventually(t, func() bool {
		current, _ := store.Current()
		return current != nil
	}, time.Second, 10*time.Millisecond)
}

func TestSnapshotStore_LatestReusesRecentSnapshot(t *testing.T) {
	repo := ledger()
	store := usecase.NewSnapshotStore(repo, clients(), usecase.SnapshotConfig{MaxAge: time.Hour}, zerolog.Nop(), nil)

	first, _, err := store.Latest(context.Background())
	require.NoError(t, err)

	second, _, err := store.Latest(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.ListCalls())
}
