package auth

import (
	"context"

	"github.com/eventconnect/server/internal/domain/users"
)

// Resolver maps a credential token to a user identity. It is a read-only
// lookup: the decoded password is not verified here, that is the
// authorizer's job.
type Resolver struct {
	repo users.Repository
}

func NewResolver(repo users.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve decodes the token and looks the username up. ErrMalformedToken
// when the token does not decode, storage.ErrNotFound when no such user
// exists. The returned record carries the stored credential hash for the
// authorizer; callers outside this package must not serialize it.
func (r *Resolver) Resolve(ctx context.Context, token string) (*users.User, error) {
	creds, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	return r.repo.GetByUsername(ctx, creds.Username)
}
