package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/migrations"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// SQLiteStore persists entries in a single sqlite file. Transactions begin
// with BEGIN IMMEDIATE so concurrent read-modify-writes serialize.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn := "file:" + path + "?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log.New(io.Discard, "", 0))
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, migrations.SQLiteDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("run sqlite migrations: %w", err)
	}

	logger.Info("sqlite store opened", slog.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

const (
	sqliteGet = `SELECT value FROM kv_entries WHERE key = ?`
	sqlitePut = `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	sqliteDelete = `DELETE FROM kv_entries WHERE key = ?`
)

func sqliteGetValue(ctx context.Context, q sqlx.QueryerContext, key string) ([]byte, error) {
	var value string
	if err := sqlx.GetContext(ctx, q, &value, sqliteGet, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return sqliteGetValue(ctx, s.db, key)
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, sqlitePut, key, string(value))
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, sqliteDelete, key)
	return err
}

// Lock is a no-op: BEGIN IMMEDIATE takes the database write lock up front.
func (s *SQLiteStore) Lock(ctx context.Context, keys ...string) error { return nil }

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(&sqliteTx{tx: tx})
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite store")
	return s.db.Close()
}

type sqliteTx struct {
	tx *sqlx.Tx
}

func (t *sqliteTx) Get(ctx context.Context, key string) ([]byte, error) {
	return sqliteGetValue(ctx, t.tx, key)
}

func (t *sqliteTx) Put(ctx context.Context, key string, value []byte) error {
	_, err := t.tx.ExecContext(ctx, sqlitePut, key, string(value))
	return err
}

func (t *sqliteTx) Delete(ctx context.Context, key string) error {
	_, err := t.tx.ExecContext(ctx, sqliteDelete, key)
	return err
}

func (t *sqliteTx) Lock(ctx context.Context, keys ...string) error { return nil }
