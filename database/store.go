// Package database owns the single SQLite file backing the service: opening it,
// applying the embedded schema, and handing scoped connections to repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"bioauth/config"
	"bioauth/database/migrations"
)

// Tables in the order they are reported and cleared.
var Tables = []string{"users", "user_data", "user_sessions"}

// Store is the single owner of the database handle. Every operation acquires a
// connection within the configured timeout and releases it when done.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// NewStore wraps an already opened handle. Used by tests with sqlmock.
func NewStore(db *sql.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// DSN builds a modernc sqlite DSN with a busy timeout and immediate transactions,
// so writers serialize on BEGIN instead of failing on lock upgrade.
func DSN(cfg config.DatabaseConfig) string {
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.Timeout.Milliseconds()),
		"_pragma=foreign_keys(1)",
		"_txlock=immediate",
	}
	if cfg.Path != ":memory:" {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	return cfg.Path + "?" + strings.Join(params, "&")
}

// Open opens the database file, applies migrations and returns the Store.
// With cfg.ResetOnStart the schema is dropped and recreated first.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.ResetOnStart {
		logger.Warn("resetting database schema", "path", cfg.Path)
		if err := Reset(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	} else if err := Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewStore(db, cfg.Timeout), nil
}

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

func prepareGoose(logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{l: logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Reset rolls every migration back and applies them again, dropping all data.
func Reset(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(logger); err != nil {
		return err
	}
	if err := goose.DownToContext(ctx, db, ".", 0); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

type gooseLogger struct {
	l *slog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	// goose only calls Fatalf from its CLI helpers, which are not used here.
	g.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// acquire takes a connection from the pool, waiting at most s.timeout.
func (s *Store) acquire(ctx context.Context) (*sql.Conn, error) {
	acqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.db.Conn(acqCtx)
	if err != nil {
		return nil, classify(fmt.Errorf("acquire connection: %w", err))
	}
	return conn, nil
}

// Do runs fn on a dedicated connection outside of a transaction.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, q DBTX) error) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return classify(fn(ctx, conn))
}

// WithTx runs fn inside one transaction on a dedicated connection.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, q DBTX) error) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return classify(WithTx(ctx, conn, nil, fn))
}

// ClearAll deletes every row from the three tables in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.WithTx(ctx, func(ctx context.Context, q DBTX) error {
		// user_data references users, so it goes first.
		for _, table := range []string{"user_data", "user_sessions", "users"} {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	err := s.Do(ctx, func(ctx context.Context, q DBTX) error {
		for _, table := range Tables {
			var n int64
			if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
				return fmt.Errorf("count %s: %w", table, err)
			}
			counts[table] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
