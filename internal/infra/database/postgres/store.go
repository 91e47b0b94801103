// Package postgres implements market.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hesham-Youssef/StockManager/internal/domain/market"
)

// DB is the slice of pgx shared by *pgxpool.Pool and pgx.Tx, so every query
// method works identically inside and outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements market.Store.
type Store struct {
	// pool is nil on transactional views; db then holds the pgx.Tx.
	pool *pgxpool.Pool
	db   DB
}

// NewStore creates a store over the connection pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool.Pool, db: pool.Pool}
}

// InTx acquires a transaction, runs fn against a view bound to it, and
// commits only when fn returns nil; the deferred rollback covers every other
// exit path including panics. A view joins the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx market.Store) error) error {
	return s.withTx(ctx, func(view *Store) error { return fn(view) })
}

func (s *Store) withTx(ctx context.Context, fn func(view *Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
