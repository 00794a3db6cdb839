package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/conecta/internal/config"
	"github.com/BradenHooton/conecta/internal/database"
	"github.com/BradenHooton/conecta/internal/models"
)

// Tx is the key-value surface shared by a Store and one of its transactions.
// Values are raw JSON documents.
type Tx interface {
	// Get returns models.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error
	// Lock reserves keys for the rest of the transaction, in sorted order.
	// A transaction that touches more than one key calls it before its
	// first read so concurrent transactions cannot wait on each other in a
	// cycle. Outside a transaction it does nothing.
	Lock(ctx context.Context, keys ...string) error
}

// Store is a persistent key-value store. Calls made directly on the Store
// autocommit; WithTx groups several keys into one atomic read-modify-write.
// fn must only use the Tx it is given.
type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON decodes the value under key into dest. found is false when the key
// is absent, in which case dest is left untouched.
func GetJSON(ctx context.Context, tx Tx, key string, dest any) (found bool, err error) {
	raw, err := tx.Get(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, tx Tx, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := tx.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Exists reports whether key holds a value.
func Exists(ctx context.Context, tx Tx, key string) (bool, error) {
	_, err := tx.Get(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	return true, nil
}

func loadList[T any](ctx context.Context, tx Tx, key string) ([]T, error) {
	var items []T
	if _, err := GetJSON(ctx, tx, key, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// NewStore opens the backend selected by cfg.Store.Driver and applies its
// schema migrations.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil

	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.Store.SQLitePath, logger)

	case config.DriverPostgres:
		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
