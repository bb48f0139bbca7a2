package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type Repository interface {
	Save(ctx context.Context, p *Profile) error
	Get(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Delete(ctx context.Context, id string) error
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Blocks are stored as a JSONB column; ordering is the array order.
func (r *PostgresRepo) Save(ctx context.Context, p *Profile) error {
	blocks, err := json.Marshal(p.Blocks)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}
	query := `
		INSERT INTO profiles (id, name, blocks)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			blocks = EXCLUDED.blocks,
			updated_at = NOW()
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, p.ID, p.Name, blocks).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT id, name, blocks, created_at, updated_at FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Profile, error) {
	query := `SELECT id, name, blocks, created_at, updated_at FROM profiles ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var blocks []byte
	if err := row.Scan(&p.ID, &p.Name, &blocks, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocks, &p.Blocks); err != nil {
		return nil, fmt.Errorf("unmarshal blocks for %s: %w", p.ID, err)
	}
	return p, nil
}
