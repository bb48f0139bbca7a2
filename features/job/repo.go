package job

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repository interface {
	Save(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context) ([]Job, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const jobColumns = `id, identity_id, identity_tier, source_kind, source_value, captured_text, status, result, failure_reason, created_at, updated_at`

// Save upserts by id. Status writes from the worker go through here too,
// so a write for a job deleted in the meantime lands in the tombstoned
// row and stays hidden from reads.
func (r *PostgresRepo) Save(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO jobs (id, identity_id, identity_tier, source_kind, source_value, captured_text, status, result, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			captured_text = EXCLUDED.captured_text,
			status = EXCLUDED.status,
			result = EXCLUDED.result,
			failure_reason = EXCLUDED.failure_reason,
			updated_at = NOW()
		RETURNING created_at, updated_at`
	var result interface{}
	if len(job.Result) > 0 {
		result = []byte(job.Result)
	}
	return r.db.QueryRowContext(ctx, query,
		job.ID, job.IdentityID, job.IdentityTier, job.SourceKind, job.SourceValue,
		job.CapturedText, job.Status, result, job.FailureReason,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 AND deleted_at IS NULL`
	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE deleted_at IS NULL ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// Delete tombstones the row. The id stays occupied so a late upsert from
// an in-flight analysis cannot resurrect the job.
func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `UPDATE jobs SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM jobs WHERE deleted_at IS NULL GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	j := &Job{}
	var result []byte
	err := row.Scan(&j.ID, &j.IdentityID, &j.IdentityTier, &j.SourceKind, &j.SourceValue,
		&j.CapturedText, &j.Status, &result, &j.FailureReason, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		j.Result = json.RawMessage(result)
	}
	return j, nil
}
