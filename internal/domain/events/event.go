package events

import (
	"context"
	"time"
)

// Event is the joined read model: JoinedCount is computed from the
// memberships relation at query time and is never persisted.
type Event struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"ownerUserId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Time        *time.Time `json:"time"`
	Location    string     `json:"location"`
	Cost        float64    `json:"cost"`
	Threshold   int        `json:"threshold"`
	Capacity    int        `json:"capacity"`
	Category    string     `json:"category"`
	JoinedCount int        `json:"joinedCount"`
}

type CreateParams struct {
	Title       string
	Description string
	Time        *time.Time
	Location    string
	Cost        float64
	Threshold   int
	Capacity    int
	Category    string
}

// UpdateParams is a partial update: nil leaves the stored value unchanged.
// The id and owner are never part of an update.
type UpdateParams struct {
	Title       *string
	Description *string
	Time        *time.Time
	Location    *string
	Cost        *float64
	Threshold   *int
	Capacity    *int
	Category    *string
}

// TxRunner executes fn against a repository bound to a single transaction;
// the upsert path runs its update-then-insert fallback through it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

type Repository interface {
	// List returns all events with their joined counts, ordered by time
	// ascending with null times last, id ascending as tiebreak.
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	// ListJoinedByUser returns the events the given user participates in,
	// in the same order and shape as List.
	ListJoinedByUser(ctx context.Context, userID int64) ([]Event, error)

	// Create allocates the id from the database sequence. The owner is
	// always the resolved caller identity, never taken from the payload.
	Create(ctx context.Context, ownerID int64, params CreateParams) (*Event, error)
	// Insert writes a row with an explicit id (PUT create-if-absent path).
	Insert(ctx context.Context, id, ownerID int64, params CreateParams) (*Event, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id int64) error
}
