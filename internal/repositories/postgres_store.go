package repositories

import (
	"context"
	"slices"

	"github.com/BradenHooton/conecta/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore keeps each entry as a JSONB row. Inside a transaction the
// first access to a key takes a transaction-scoped advisory lock on it;
// multi-key transactions take theirs up front through Lock.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func pgGet(ctx context.Context, q pgQuerier, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return value, nil
}

func pgPut(ctx context.Context, q pgQuerier, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := q.Exec(ctx, query, key, value)
	return database.MapPostgresError(err)
}

func pgDelete(ctx context.Context, q pgQuerier, key string) error {
	_, err := q.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return database.MapPostgresError(err)
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	return pgGet(ctx, s.db.Pool, key)
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	return pgPut(ctx, s.db.Pool, key, value)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return pgDelete(ctx, s.db.Pool, key)
}

// Lock is a no-op outside a transaction.
func (s *PostgresStore) Lock(ctx context.Context, keys ...string) error { return nil }

func (s *PostgresStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&postgresTx{tx: tx, locked: make(map[string]struct{})})
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

type postgresTx struct {
	tx     pgx.Tx
	locked map[string]struct{}
}

func (t *postgresTx) lock(ctx context.Context, key string) error {
	if _, ok := t.locked[key]; ok {
		return nil
	}
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return database.MapPostgresError(err)
	}
	t.locked[key] = struct{}{}
	return nil
}

// Lock takes the advisory lock of every key in sorted order.
func (t *postgresTx) Lock(ctx context.Context, keys ...string) error {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	for _, key := range sorted {
		if err := t.lock(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (t *postgresTx) Get(ctx context.Context, key string) ([]byte, error) {
	if err := t.lock(ctx, key); err != nil {
		return nil, err
	}
	return pgGet(ctx, t.tx, key)
}

func (t *postgresTx) Put(ctx context.Context, key string, value []byte) error {
	if err := t.lock(ctx, key); err != nil {
		return err
	}
	return pgPut(ctx, t.tx, key, value)
}

func (t *postgresTx) Delete(ctx context.Context, key string) error {
	if err := t.lock(ctx, key); err != nil {
		return err
	}
	return pgDelete(ctx, t.tx, key)
}
