// internal/kv/sqlite.go
//
// SQLite-backed Store for self-hosted deployments without Redis.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Mapping counters and sets onto two tables (kv_counters, kv_set_members).
//
// A single connection is kept open so transactions never race for the write lock.

package kv

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var migrations embed.FS

// SQLite stores counters and sets in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	// Ensure directory exists for ./data/kv.db, etc.
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("kv: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// migrate applies embedded sql/*.sql files in lexical order, each in its own
// transaction, skipping files already recorded in _migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("kv: create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("kv: list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("kv: query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("kv: read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("kv: apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("kv: record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("kv: commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func incr(ctx context.Context, q execer, key string) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, `
        INSERT INTO kv_counters (key, value) VALUES (?, 1)
        ON CONFLICT(key) DO UPDATE SET value = value + 1
        RETURNING value`, key,
	).Scan(&n)
	return n, err
}

func sadd(ctx context.Context, q execer, key, member string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO kv_set_members (key, member) VALUES (?, ?)`, key, member)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *SQLite) Incr(ctx context.Context, key string) (int64, error) {
	return incr(ctx, s.db, key)
}

func (s *SQLite) SAdd(ctx context.Context, key, member string) (bool, error) {
	return sadd(ctx, s.db, key, member)
}

func (s *SQLite) GetInt(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_counters WHERE key=?`, key).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

func (s *SQLite) SIsMember(ctx context.Context, key, member string) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM kv_set_members WHERE key=? AND member=?`, key, member,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// AddAndIncr adds member and bumps counterKey in one transaction.
func (s *SQLite) AddAndIncr(ctx context.Context, setKey, member, counterKey string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	added, err := sadd(ctx, tx, setKey, member)
	if err != nil {
		return false, fmt.Errorf("kv: sadd %s: %w", setKey, err)
	}
	if !added {
		return false, nil
	}
	if _, err := incr(ctx, tx, counterKey); err != nil {
		return false, fmt.Errorf("kv: incr %s: %w", counterKey, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("kv: commit vote: %w", err)
	}
	return true, nil
}

func (s *SQLite) Close() error { return s.db.Close() }
