package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Ledger answers "may this identity run another analysis" and records the
// analyses that completed. The check and the increment are deliberately
// separate calls: admission happens at submission, the increment only
// after a successful analysis, so failed runs never consume quota.
type Ledger struct {
	repo          Repository
	lifetimeLimit int
	dailyLimit    int
	now           func() time.Time
}

func NewLedger(repo Repository, lifetimeLimit, dailyLimit int) *Ledger {
	return &Ledger{
		repo:          repo,
		lifetimeLimit: lifetimeLimit,
		dailyLimit:    dailyLimit,
		now:           time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// today is the calendar-day boundary in UTC. Crossing it resets the
// daily counter, never the lifetime one.
func (l *Ledger) today() time.Time {
	t := l.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckAdmission returns nil when the identity may proceed. Limits are
// evaluated lifetime-first. A missing record means a fresh identity with
// zero usage.
func (l *Ledger) CheckAdmission(ctx context.Context, id Identity) (*Denial, error) {
	if id.Unrestricted() {
		return nil, nil
	}

	lifetime, daily, err := l.counts(ctx, id.ID)
	if err != nil {
		return nil, err
	}

	if lifetime >= l.lifetimeLimit {
		return &Denial{Reason: ReasonFreeLimit, Limit: l.lifetimeLimit}, nil
	}
	if daily >= l.dailyLimit {
		return &Denial{Reason: ReasonDailyLimit, Limit: l.dailyLimit}, nil
	}
	return nil, nil
}

// Increment records one completed analysis. Admin identities are not
// tracked.
func (l *Ledger) Increment(ctx context.Context, id Identity) error {
	if id.Tier == TierAdmin {
		return nil
	}
	if err := l.repo.Increment(ctx, id.ID, l.today()); err != nil {
		return fmt.Errorf("increment usage for %s: %w", id.ID, err)
	}
	return nil
}

func (l *Ledger) Stats(ctx context.Context, id Identity) (*Stats, error) {
	lifetime, daily, err := l.counts(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Tier:          id.Tier,
		TotalAnalyses: lifetime,
		TodayAnalyses: daily,
		LifetimeLimit: l.lifetimeLimit,
		DailyLimit:    l.dailyLimit,
	}, nil
}

func (l *Ledger) counts(ctx context.Context, identityID string) (lifetime, daily int, err error) {
	rec, err := l.repo.Get(ctx, identityID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("load usage for %s: %w", identityID, err)
	}

	daily = rec.DailyCount
	if !sameDay(rec.DailyWindowStart, l.today()) {
		daily = 0
	}
	return rec.LifetimeCount, daily, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
