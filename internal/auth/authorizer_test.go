package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/eventconnect/server/internal/domain/events"
	"github.com/eventconnect/server/internal/domain/users"
	"github.com/eventconnect/server/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUsersRepo struct {
	getFn           func(id int64) (*users.User, error)
	getByUsernameFn func(username string) (*users.User, error)
}

func (s stubUsersRepo) List(_ context.Context) ([]users.User, error) {
	return nil, errors.New("not implemented")
}

func (s stubUsersRepo) Get(_ context.Context, id int64) (*users.User, error) {
	if s.getFn == nil {
		return nil, storage.ErrNotFound
	}
	return s.getFn(id)
}

func (s stubUsersRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	if s.getByUsernameFn == nil {
		return nil, storage.ErrNotFound
	}
	return s.getByUsernameFn(username)
}

func (s stubUsersRepo) Create(_ context.Context, _ users.CreateParams) (*users.User, error) {
	return nil, errors.New("not implemented")
}

func (s stubUsersRepo) Insert(_ context.Context, _ int64, _ users.CreateParams) (*users.User, error) {
	return nil, errors.New("not implemented")
}

func (s stubUsersRepo) Update(_ context.Context, _ int64, _ users.UpdateParams) (*users.User, error) {
	return nil, errors.New("not implemented")
}

func (s stubUsersRepo) Delete(_ context.Context, _ int64) error {
	return errors.New("not implemented")
}

type stubEventsRepo struct {
	getFn func(id int64) (*events.Event, error)
}

func (s stubEventsRepo) List(_ context.Context) ([]events.Event, error) {
	return nil, errors.New("not implemented")
}

func (s stubEventsRepo) Get(_ context.Context, id int64) (*events.Event, error) {
	if s.getFn == nil {
		return nil, storage.ErrNotFound
	}
	return s.getFn(id)
}

func (s stubEventsRepo) ListJoinedByUser(_ context.Context, _ int64) ([]events.Event, error) {
	return nil, errors.New("not implemented")
}

func (s stubEventsRepo) Create(_ context.Context, _ int64, _ events.CreateParams) (*events.Event, error) {
	return nil, errors.New("not implemented")
}

func (s stubEventsRepo) Insert(_ context.Context, _, _ int64, _ events.CreateParams) (*events.Event, error) {
	return nil, errors.New("not implemented")
}

func (s stubEventsRepo) Update(_ context.Context, _ int64, _ events.UpdateParams) (*events.Event, error) {
	return nil, errors.New("not implemented")
}

func (s stubEventsRepo) Delete(_ context.Context, _ int64) error {
	return errors.New("not implemented")
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func aliceRepo(t *testing.T) stubUsersRepo {
	t.Helper()
	hash := hashFor(t, "s3cret")
	alice := users.User{ID: 7, Username: "alice", Password: hash}
	return stubUsersRepo{
		getFn: func(id int64) (*users.User, error) {
			if id == alice.ID {
				copied := alice
				return &copied, nil
			}
			return nil, storage.ErrNotFound
		},
		getByUsernameFn: func(username string) (*users.User, error) {
			if username == alice.Username {
				copied := alice
				return &copied, nil
			}
			return nil, storage.ErrNotFound
		},
	}
}

func TestAuthorizeUserSelf(t *testing.T) {
	authorizer := NewBasicAuthorizer(aliceRepo(t), stubEventsRepo{})

	err := authorizer.AuthorizeUser(context.Background(), EncodeToken("alice", "s3cret"), 7)
	require.NoError(t, err)
}

func TestAuthorizeUserWrongPassword(t *testing.T) {
	authorizer := NewBasicAuthorizer(aliceRepo(t), stubEventsRepo{})

	err := authorizer.AuthorizeUser(context.Background(), EncodeToken("alice", "wrong"), 7)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeUserUnknownCaller(t *testing.T) {
	authorizer := NewBasicAuthorizer(aliceRepo(t), stubEventsRepo{})

	err := authorizer.AuthorizeUser(context.Background(), EncodeToken("mallory", "s3cret"), 7)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeUserOtherUserDenied(t *testing.T) {
	repo := aliceRepo(t)
	bob := users.User{ID: 8, Username: "bob", Password: hashFor(t, "x")}
	inner := repo.getFn
	repo.getFn = func(id int64) (*users.User, error) {
		if id == bob.ID {
			copied := bob
			return &copied, nil
		}
		return inner(id)
	}
	authorizer := NewBasicAuthorizer(repo, stubEventsRepo{})

	err := authorizer.AuthorizeUser(context.Background(), EncodeToken("alice", "s3cret"), 8)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeUserAbsentTargetAllowed(t *testing.T) {
	// PUT create-if-absent: the caller becomes the new row, so a missing
	// target is not a denial.
	authorizer := NewBasicAuthorizer(aliceRepo(t), stubEventsRepo{})

	err := authorizer.AuthorizeUser(context.Background(), EncodeToken("alice", "s3cret"), 999)
	require.NoError(t, err)
}

func TestAuthorizeUserMalformedToken(t *testing.T) {
	authorizer := NewBasicAuthorizer(aliceRepo(t), stubEventsRepo{})

	err := authorizer.AuthorizeUser(context.Background(), "%%%", 7)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestAuthorizeEventOwner(t *testing.T) {
	eventsRepo := stubEventsRepo{
		getFn: func(id int64) (*events.Event, error) {
			return &events.Event{ID: id, OwnerID: 7}, nil
		},
	}
	authorizer := NewBasicAuthorizer(aliceRepo(t), eventsRepo)

	err := authorizer.AuthorizeEvent(context.Background(), EncodeToken("alice", "s3cret"), 42)
	require.NoError(t, err)
}

func TestAuthorizeEventNonOwnerDenied(t *testing.T) {
	eventsRepo := stubEventsRepo{
		getFn: func(id int64) (*events.Event, error) {
			return &events.Event{ID: id, OwnerID: 99}, nil
		},
	}
	authorizer := NewBasicAuthorizer(aliceRepo(t), eventsRepo)

	err := authorizer.AuthorizeEvent(context.Background(), EncodeToken("alice", "s3cret"), 42)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeEventAbsentTargetAllowed(t *testing.T) {
	authorizer := NewBasicAuthorizer(aliceRepo(t), stubEventsRepo{})

	err := authorizer.AuthorizeEvent(context.Background(), EncodeToken("alice", "s3cret"), 42)
	require.NoError(t, err)
}

func TestResolverResolve(t *testing.T) {
	resolver := NewResolver(aliceRepo(t))

	user, err := resolver.Resolve(context.Background(), EncodeToken("alice", "anything"))
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "alice", user.Username)
}

func TestResolverUnknownUser(t *testing.T) {
	resolver := NewResolver(aliceRepo(t))

	_, err := resolver.Resolve(context.Background(), EncodeToken("nobody", "x"))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolverMalformedToken(t *testing.T) {
	resolver := NewResolver(aliceRepo(t))

	_, err := resolver.Resolve(context.Background(), "!!!")
	require.ErrorIs(t, err, ErrMalformedToken)
}
