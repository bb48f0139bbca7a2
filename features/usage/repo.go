package usage

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	Get(ctx context.Context, identityID string) (*Record, error)
	Increment(ctx context.Context, identityID string, day time.Time) error
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context, identityID string) (*Record, error) {
	rec := &Record{}
	query := `SELECT identity_id, lifetime_count, daily_count, daily_window_start FROM usage_records WHERE identity_id = $1`
	err := r.db.QueryRowContext(ctx, query, identityID).Scan(&rec.IdentityID, &rec.LifetimeCount, &rec.DailyCount, &rec.DailyWindowStart)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Increment bumps both counters in one statement. The CASE keeps the
// daily count scoped to the current window: crossing a day boundary
// resets it to 1 while the lifetime count only ever grows.
func (r *PostgresRepo) Increment(ctx context.Context, identityID string, day time.Time) error {
	query := `
		INSERT INTO usage_records (identity_id, lifetime_count, daily_count, daily_window_start)
		VALUES ($1, 1, 1, $2)
		ON CONFLICT (identity_id) DO UPDATE SET
			lifetime_count = usage_records.lifetime_count + 1,
			daily_count = CASE
				WHEN usage_records.daily_window_start = $2 THEN usage_records.daily_count + 1
				ELSE 1
			END,
			daily_window_start = $2,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, identityID, day)
	return err
}
