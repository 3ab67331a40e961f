package postgres

import (
	"context"
	"fmt"

	"github.com/eventconnect/server/internal/domain/memberships"
	"github.com/eventconnect/server/internal/storage"
)

var _ memberships.Repository = (*MembershipRepository)(nil)

func (r *MembershipRepository) queryer() DBTX {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// Insert is idempotent: the composite primary key plus ON CONFLICT DO
// NOTHING makes a repeated join a no-op. A foreign-key violation here means
// the event or user does not exist, which reads as not-found to the caller.
func (r *MembershipRepository) Insert(ctx context.Context, eventID, userID int64) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO memberships (event_id, user_id)
VALUES ($1, $2)
ON CONFLICT (event_id, user_id) DO NOTHING
`, eventID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("join event: %w", storage.ErrNotFound)
		}
		return fmt.Errorf("join event: %w", mapError(err))
	}
	return nil
}

func (r *MembershipRepository) Count(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx, `
SELECT COUNT(*) FROM memberships WHERE event_id = $1
`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count memberships: %w", mapError(err))
	}
	return count, nil
}
