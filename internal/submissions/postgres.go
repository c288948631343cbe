package submissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starsign-web/starsign/internal/zodiac"
)

// PostgresStore persists submissions in PostgreSQL for multi-instance
// deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
	cap  int
}

// NewPostgresStore connects to databaseURL and ensures the schema
// exists.
func NewPostgresStore(ctx context.Context, databaseURL string, cap int) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("postgres database url is required")
	}
	if cap <= 0 {
		cap = DefaultRetentionCap
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, cap: cap}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			date_of_birth DATE NOT NULL,
			sign TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions (created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// Append inserts sub and trims to the retention cap in one transaction.
// The trim keys off seq rather than created_at so concurrent appends
// with equal timestamps still evict deterministically.
func (s *PostgresStore) Append(ctx context.Context, sub Submission) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO submissions (id, name, date_of_birth, sign, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.Name, sub.DateOfBirth, string(sub.Sign), sub.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM submissions
		 WHERE seq NOT IN (SELECT seq FROM submissions ORDER BY seq DESC LIMIT $1)`,
		s.cap,
	); err != nil {
		return fmt.Errorf("trim submissions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit submission: %w", err)
	}
	return nil
}

// Recent returns up to limit submissions, newest first by insertion
// order.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, date_of_birth, sign, created_at
		 FROM submissions ORDER BY seq DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]Submission, 0, limit)
	for rows.Next() {
		var (
			sub  Submission
			sign string
		)
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.DateOfBirth, &sign, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		sub.Sign = zodiac.Sign(sign)
		sub.DateOfBirth = sub.DateOfBirth.UTC()
		sub.CreatedAt = sub.CreatedAt.UTC()
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return subs, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
