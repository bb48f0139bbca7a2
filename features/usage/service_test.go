package usage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rec        *Record
	getErr     error
	increments []time.Time
	incErr     error
}

func (f *fakeRepo) Get(ctx context.Context, identityID string) (*Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.rec, nil
}

func (f *fakeRepo) Increment(ctx context.Context, identityID string, day time.Time) error {
	f.increments = append(f.increments, day)
	return f.incErr
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCheckAdmission_NewIdentityAllowed(t *testing.T) {
	repo := &fakeRepo{getErr: sql.ErrNoRows}
	ledger := NewLedger(repo, 25, 3)

	denial, err := ledger.CheckAdmission(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	assert.Nil(t, denial)
}

func TestCheckAdmission_LifetimeLimitWinsOverDaily(t *testing.T) {
	now := time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)
	repo := &fakeRepo{rec: &Record{
		IdentityID:       "i-1",
		LifetimeCount:    25,
		DailyCount:       3,
		DailyWindowStart: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}}
	ledger := NewLedger(repo, 25, 3).WithClock(fixedClock(now))

	denial, err := ledger.CheckAdmission(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, ReasonFreeLimit, denial.Reason)
	assert.Equal(t, 25, denial.Limit)
}

func TestCheckAdmission_DailyLimitReached(t *testing.T) {
	now := time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)
	repo := &fakeRepo{rec: &Record{
		IdentityID:       "i-1",
		LifetimeCount:    10,
		DailyCount:       3,
		DailyWindowStart: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}}
	ledger := NewLedger(repo, 25, 3).WithClock(fixedClock(now))

	denial, err := ledger.CheckAdmission(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, ReasonDailyLimit, denial.Reason)
	assert.Equal(t, 3, denial.Limit)
}

func TestCheckAdmission_StaleWindowResetsDailyCount(t *testing.T) {
	now := time.Date(2025, 6, 13, 0, 5, 0, 0, time.UTC)
	repo := &fakeRepo{rec: &Record{
		IdentityID:       "i-1",
		LifetimeCount:    10,
		DailyCount:       3,
		DailyWindowStart: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}}
	ledger := NewLedger(repo, 25, 3).WithClock(fixedClock(now))

	denial, err := ledger.CheckAdmission(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	assert.Nil(t, denial)
}

func TestCheckAdmission_UnrestrictedTiersSkipRepo(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("should not be called")}
	ledger := NewLedger(repo, 25, 3)

	for _, tier := range []string{TierPro, TierAdmin} {
		denial, err := ledger.CheckAdmission(context.Background(), Identity{ID: "i-1", Tier: tier})
		require.NoError(t, err)
		assert.Nil(t, denial)
	}
}

func TestCheckAdmission_RepoFailurePropagates(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("db down")}
	ledger := NewLedger(repo, 25, 3)

	_, err := ledger.CheckAdmission(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	assert.Error(t, err)
}

func TestIncrement_UsesUTCDayBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2025, 6, 13, 8, 0, 0, 0, loc) // 2025-06-12 22:00 UTC
	repo := &fakeRepo{}
	ledger := NewLedger(repo, 25, 3).WithClock(fixedClock(now))

	err := ledger.Increment(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	require.Len(t, repo.increments, 1)
	assert.Equal(t, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), repo.increments[0])
}

func TestIncrement_AdminNotTracked(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo, 25, 3)

	err := ledger.Increment(context.Background(), Identity{ID: "i-1", Tier: TierAdmin})

	require.NoError(t, err)
	assert.Empty(t, repo.increments)
}

func TestIncrement_ProIsTracked(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo, 25, 3)

	err := ledger.Increment(context.Background(), Identity{ID: "i-1", Tier: TierPro})

	require.NoError(t, err)
	assert.Len(t, repo.increments, 1)
}

func TestStats_ReportsCountsAndLimits(t *testing.T) {
	now := time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)
	repo := &fakeRepo{rec: &Record{
		IdentityID:       "i-1",
		LifetimeCount:    7,
		DailyCount:       2,
		DailyWindowStart: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}}
	ledger := NewLedger(repo, 25, 3).WithClock(fixedClock(now))

	stats, err := ledger.Stats(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalAnalyses)
	assert.Equal(t, 2, stats.TodayAnalyses)
	assert.Equal(t, 25, stats.LifetimeLimit)
	assert.Equal(t, 3, stats.DailyLimit)
	assert.Equal(t, TierFree, stats.Tier)
}

func TestStats_StaleWindowZeroesToday(t *testing.T) {
	now := time.Date(2025, 6, 13, 1, 0, 0, 0, time.UTC)
	repo := &fakeRepo{rec: &Record{
		IdentityID:       "i-1",
		LifetimeCount:    7,
		DailyCount:       2,
		DailyWindowStart: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}}
	ledger := NewLedger(repo, 25, 3).WithClock(fixedClock(now))

	stats, err := ledger.Stats(context.Background(), Identity{ID: "i-1", Tier: TierFree})

	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalAnalyses)
	assert.Equal(t, 0, stats.TodayAnalyses)
}
