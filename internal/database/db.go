package database

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MaxTxAttempts bounds how often WithTransaction reruns a transaction that
// Postgres aborted as a deadlock victim or serialization failure.
const MaxTxAttempts = 3

// MapPostgresError translates the errors the kv_entries queries can produce.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02": // invalid_text_representation: value is not JSON
			return models.ErrBadRequest
		case "40P01", "40001": // deadlock_detected, serialization_failure
			return models.ErrTxAborted
		}
	}

	return err
}

// WithTransaction runs fn in a transaction. It commits when fn returns nil
// and rolls back on error or panic. A transaction aborted with
// models.ErrTxAborted is rerun from scratch up to MaxTxAttempts times, so fn
// must only have effects through tx and its own return values.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= MaxTxAttempts; attempt++ {
		err = MapPostgresError(db.runTransaction(ctx, fn))
		if !errors.Is(err, models.ErrTxAborted) || ctx.Err() != nil {
			return err
		}
		if db.logger != nil {
			db.logger.Warn("transaction aborted by a concurrent update", slog.Int("attempt", attempt))
		}
	}
	return err
}

func (db *DB) runTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}
