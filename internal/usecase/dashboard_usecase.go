package usecase

import (
	"context"
	"time"

	"github.com/iho/cashbook/internal/domain"
)

// DashboardUseCase derives the finance read models from the entry store snapshot.
type DashboardUseCase struct {
	snapshots *SnapshotStore
}

// NewDashboardUseCase creates a new DashboardUseCase.
func NewDashboardUseCase(snapshots *SnapshotStore) *DashboardUseCase {
	return &DashboardUseCase{snapshots: snapshots}
}

// DashboardInput selects the views. A zero Period means the current month and
// a zero AsOf means today.
type DashboardInput struct {
	AsOf   time.Time
	Filter domain.StatementFilter
	Period domain.Period
}

// SnapshotInfo tells the caller which snapshot a view was derived from.
type SnapshotInfo struct {
	FetchedAt   time.Time
	StaleReason string
	Version     uint64
	Stale       bool
}

// DashboardView bundles every read model of the finance dashboard.
type DashboardView struct {
	Summary     domain.Summary
	Delinquency domain.Delinquency
	Statement   []*domain.Entry
	Snapshot    SnapshotInfo
}

// SummaryView is the period summary with its snapshot info.
type SummaryView struct {
	Summary  domain.Summary
	Snapshot SnapshotInfo
}

// DelinquencyView is the collection list with its snapshot info.
type DelinquencyView struct {
	Delinquency domain.Delinquency
	Snapshot    SnapshotInfo
}

// StatementView is the filtered statement with its snapshot info.
type StatementView struct {
	Period   domain.Period
	Entries  []*domain.Entry
	Snapshot SnapshotInfo
}

// Load derives all views from one snapshot.
func (uc *DashboardUseCase) Load(ctx context.Context, input DashboardInput) (*DashboardView, error) {
	input = withDefaults(input)

	snap, info, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	view := &DashboardView{Snapshot: info}

	// A caller that went away stops the recompute between stages.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view.Summary = domain.Summarize(snap, input.Period)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view.Delinquency = domain.GroupDelinquent(snap, input.AsOf)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view.Statement = domain.FilterStatement(snap, input.Period, input.Filter)

	return view, nil
}

// Summary returns the period summary.
func (uc *DashboardUseCase) Summary(ctx context.Context, period domain.Period) (*SummaryView, error) {
	period = withDefaults(DashboardInput{Period: period}).Period

	snap, info, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &SummaryView{Summary: domain.Summarize(snap, period), Snapshot: info}, nil
}

// Delinquency returns the collection list as of the given date.
func (uc *DashboardUseCase) Delinquency(ctx context.Context, asOf time.Time) (*DelinquencyView, error) {
	asOf = withDefaults(DashboardInput{AsOf: asOf}).AsOf

	snap, info, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &DelinquencyView{Delinquency: domain.GroupDelinquent(snap, asOf), Snapshot: info}, nil
}

// Statement returns the filtered statement of a period.
func (uc *DashboardUseCase) Statement(ctx context.Context, period domain.Period, filter domain.StatementFilter) (*StatementView, error) {
	period = withDefaults(DashboardInput{Period: period}).Period

	snap, info, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &StatementView{
		Period:   period,
		Entries:  domain.FilterStatement(snap, period, filter),
		Snapshot: info,
	}, nil
}

func (uc *DashboardUseCase) snapshot(ctx context.Context) (*domain.Snapshot, SnapshotInfo, error) {
	snap, fresh, err := uc.snapshots.Latest(ctx)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}

	return snap, snapshotInfo(snap, fresh), nil
}

func snapshotInfo(snap *domain.Snapshot, fresh Freshness) SnapshotInfo {
	info := SnapshotInfo{
		Version:   snap.Version(),
		FetchedAt: snap.FetchedAt(),
		Stale:     fresh.Stale,
	}
	if fresh.Stale && fresh.LastError != nil {
		info.StaleReason = fresh.LastError.Error()
	}
	return info
}

func withDefaults(input DashboardInput) DashboardInput {
	now := time.Now().UTC()

	if input.Period.IsZero() {
		input.Period = domain.PeriodOf(now)
	}
	if input.AsOf.IsZero() {
		input.AsOf = now
	}
	return input
}
