// Package memberships manages the many-to-many join relation between users
// and events. A membership has no identity of its own: the composite
// (event_id, user_id) key is the whole record.
package memberships

import "context"

type Membership struct {
	EventID int64 `json:"eventId"`
	UserID  int64 `json:"userId"`
}

type Repository interface {
	// Insert records the pair idempotently: if it already exists no new row
	// is created and no error is raised. A missing event or user surfaces as
	// ErrNotFound.
	Insert(ctx context.Context, eventID, userID int64) error
	// Count returns the number of members of an event. It does not
	// distinguish "no members" from "no such event"; both yield zero.
	Count(ctx context.Context, eventID int64) (int, error)
}
