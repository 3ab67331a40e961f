package postgres

import (
	"context"
	"fmt"

	"github.com/eventconnect/server/internal/domain/events"
	"github.com/eventconnect/server/internal/domain/memberships"
	"github.com/eventconnect/server/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Memberships() memberships.Repository {
	return &MembershipRepository{pool: r.pool, tx: r.tx}
}

// WithTx runs fn against a repository bound to a single transaction. The
// transaction is rolled back on error and committed otherwise; nested calls
// reuse the outer transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, *Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", mapError(err))
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", mapError(err))
	}
	return nil
}

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type MembershipRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}
