package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starsign-web/starsign/internal/zodiac"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists submissions in a local SQLite database. The
// driver is pure Go, so this backend works anywhere the binary runs and
// gives single-node durability without an external service.
type SQLiteStore struct {
	db  *sql.DB
	cap int
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string, cap int) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite store path is required")
	}
	if cap <= 0 {
		cap = DefaultRetentionCap
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer connection sidesteps SQLITE_BUSY under concurrent
	// appends.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, cap: cap}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			sign TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

// Append inserts sub and trims to the retention cap in one transaction,
// so readers never observe more than cap rows.
func (s *SQLiteStore) Append(ctx context.Context, sub Submission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (id, name, date_of_birth, sign, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.DateOfBirth.UTC().Format(DateLayout), string(sub.Sign), toMillis(sub.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM submissions
		 WHERE seq NOT IN (SELECT seq FROM submissions ORDER BY seq DESC LIMIT ?)`,
		s.cap,
	); err != nil {
		return fmt.Errorf("trim submissions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission: %w", err)
	}
	return nil
}

// Recent returns up to limit submissions, newest first by insertion
// order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date_of_birth, sign, created_at
		 FROM submissions ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]Submission, 0, limit)
	for rows.Next() {
		var (
			sub       Submission
			dob       string
			sign      string
			createdAt int64
		)
		if err := rows.Scan(&sub.ID, &sub.Name, &dob, &sign, &createdAt); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		born, err := time.Parse(DateLayout, dob)
		if err != nil {
			return nil, fmt.Errorf("parse stored birth date %q: %w", dob, err)
		}
		sub.DateOfBirth = born
		sub.Sign = zodiac.Sign(sign)
		sub.CreatedAt = fromMillis(createdAt)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return subs, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
