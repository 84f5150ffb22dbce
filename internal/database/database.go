// Package database owns the PostgreSQL connection pool, transactions and schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Options configures the connection pool
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultOptions are the pool settings used by the API server
var DefaultOptions = Options{
	MaxOpenConns:    30,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	ConnMaxIdleTime: 5 * time.Minute,
}

// NewPostgresConnection opens and pings a pooled connection to databaseURL
func NewPostgresConnection(ctx context.Context, databaseURL string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	return db, nil
}

// TxBeginner starts transactions. *sqlx.DB satisfies it.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

const maxTxAttempts = 5

// ErrTxRetryLimit is returned when a transaction keeps hitting serialization failures
var ErrTxRetryLimit = errors.New("transaction retry limit exceeded")

// WithTx runs fn inside a serializable transaction, retrying on
// serialization failures and deadlocks.
func WithTx(ctx context.Context, db TxBeginner, fn func(tx *sqlx.Tx) error) error {
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if IsRetryable(err) && attempt < maxTxAttempts {
				if err := backoff(ctx, attempt); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if IsRetryable(err) && attempt < maxTxAttempts {
				if err := backoff(ctx, attempt); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}
	return ErrTxRetryLimit
}

// IsRetryable reports whether err is a postgres serialization failure or deadlock
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// IsUniqueViolation reports whether err is a postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt*attempt) * 10 * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
