package postgres

import (
	"context"

	"github.com/eventconnect/server/internal/domain/events"
	"github.com/eventconnect/server/internal/domain/users"
)

var (
	_ users.TxRunner  = UsersTx{}
	_ events.TxRunner = EventsTx{}
)

// UsersTx adapts WithTx to the users domain contract: fn runs against a user
// repository bound to a single transaction.
type UsersTx struct {
	repo *Repository
}

func NewUsersTx(repo *Repository) UsersTx {
	return UsersTx{repo: repo}
}

func (t UsersTx) InTx(ctx context.Context, fn func(users.Repository) error) error {
	return t.repo.WithTx(ctx, func(ctx context.Context, tx *Repository) error {
		return fn(tx.Users())
	})
}

// EventsTx is the events-domain counterpart of UsersTx.
type EventsTx struct {
	repo *Repository
}

func NewEventsTx(repo *Repository) EventsTx {
	return EventsTx{repo: repo}
}

func (t EventsTx) InTx(ctx context.Context, fn func(events.Repository) error) error {
	return t.repo.WithTx(ctx, func(ctx context.Context, tx *Repository) error {
		return fn(tx.Events())
	})
}
