package users

import (
	"context"
	"errors"
	"testing"

	"github.com/eventconnect/server/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubRepo struct {
	listFn   func() ([]User, error)
	getFn    func(id int64) (*User, error)
	createFn func(params CreateParams) (*User, error)
	insertFn func(id int64, params CreateParams) (*User, error)
	updateFn func(id int64, params UpdateParams) (*User, error)
	deleteFn func(id int64) error
}

func (s stubRepo) List(_ context.Context) ([]User, error) {
	return s.listFn()
}

func (s stubRepo) Get(_ context.Context, id int64) (*User, error) {
	return s.getFn(id)
}

func (s stubRepo) GetByUsername(_ context.Context, _ string) (*User, error) {
	return nil, errors.New("not implemented")
}

func (s stubRepo) Create(_ context.Context, params CreateParams) (*User, error) {
	return s.createFn(params)
}

func (s stubRepo) Insert(_ context.Context, id int64, params CreateParams) (*User, error) {
	return s.insertFn(id, params)
}

func (s stubRepo) Update(_ context.Context, id int64, params UpdateParams) (*User, error) {
	return s.updateFn(id, params)
}

func (s stubRepo) Delete(_ context.Context, id int64) error {
	return s.deleteFn(id)
}

type recordingTx struct {
	repo  Repository
	calls *int
}

func (t recordingTx) InTx(_ context.Context, fn func(Repository) error) error {
	*t.calls++
	return fn(t.repo)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, 0, zerolog.Nop())
}

func TestCreateHashesPassword(t *testing.T) {
	var stored CreateParams
	repo := stubRepo{
		createFn: func(params CreateParams) (*User, error) {
			stored = params
			return &User{ID: 1, Username: params.Username, Password: params.PasswordHash}, nil
		},
	}

	user, err := newTestService(repo).Create(context.Background(), CreateInput{
		Username: "alice",
		Password: "s3cret",
	})
	require.NoError(t, err)

	require.NotEqual(t, "s3cret", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
	require.Equal(t, MaskedPassword, user.Password)
}

func TestListMasksPasswords(t *testing.T) {
	repo := stubRepo{
		listFn: func() ([]User, error) {
			return []User{
				{ID: 1, Username: "alice", Password: "$2a$12$hash"},
				{ID: 2, Username: "bob", Password: "$2a$12$other"},
			}, nil
		},
	}

	items, err := newTestService(repo).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, user := range items {
		require.Equal(t, MaskedPassword, user.Password)
	}
}

func TestGetMasksPassword(t *testing.T) {
	repo := stubRepo{
		getFn: func(id int64) (*User, error) {
			return &User{ID: id, Username: "alice", Password: "$2a$12$hash"}, nil
		},
	}

	user, err := newTestService(repo).Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, MaskedPassword, user.Password)
}

func TestGetPropagatesNotFound(t *testing.T) {
	repo := stubRepo{
		getFn: func(_ int64) (*User, error) {
			return nil, storage.ErrNotFound
		},
	}

	_, err := newTestService(repo).Get(context.Background(), 1)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpsertUpdatesExistingRow(t *testing.T) {
	username := "renamed"
	inserted := false
	repo := stubRepo{
		updateFn: func(id int64, params UpdateParams) (*User, error) {
			require.Equal(t, int64(5), id)
			require.NotNil(t, params.Username)
			require.Equal(t, username, *params.Username)
			require.Nil(t, params.PasswordHash)
			return &User{ID: id, Username: *params.Username, Password: "hash"}, nil
		},
		insertFn: func(_ int64, _ CreateParams) (*User, error) {
			inserted = true
			return nil, errors.New("should not insert")
		},
	}

	user, err := newTestService(repo).Upsert(context.Background(), 5, UpdateInput{Username: &username})
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, username, user.Username)
	require.Equal(t, MaskedPassword, user.Password)
}

func TestUpsertInsertsWhenMissing(t *testing.T) {
	username := "newcomer"
	password := "pw"
	repo := stubRepo{
		updateFn: func(_ int64, _ UpdateParams) (*User, error) {
			return nil, storage.ErrNotFound
		},
		insertFn: func(id int64, params CreateParams) (*User, error) {
			require.Equal(t, int64(42), id)
			require.Equal(t, username, params.Username)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(params.PasswordHash), []byte(password)))
			return &User{ID: id, Username: params.Username, Password: params.PasswordHash}, nil
		},
	}

	user, err := newTestService(repo).Upsert(context.Background(), 42, UpdateInput{
		Username: &username,
		Password: &password,
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
}

func TestUpsertRunsInTransaction(t *testing.T) {
	username := "newcomer"
	inner := stubRepo{
		updateFn: func(_ int64, _ UpdateParams) (*User, error) {
			return nil, storage.ErrNotFound
		},
		insertFn: func(id int64, params CreateParams) (*User, error) {
			return &User{ID: id, Username: params.Username, Password: params.PasswordHash}, nil
		},
	}
	outer := stubRepo{
		updateFn: func(_ int64, _ UpdateParams) (*User, error) {
			t.Fatal("upsert must use the transaction-bound repository")
			return nil, nil
		},
		insertFn: func(_ int64, _ CreateParams) (*User, error) {
			t.Fatal("upsert must use the transaction-bound repository")
			return nil, nil
		},
	}

	calls := 0
	service := NewService(outer, recordingTx{repo: inner, calls: &calls}, 0, zerolog.Nop())

	user, err := service.Upsert(context.Background(), 42, UpdateInput{Username: &username})
	require.NoError(t, err)
	require.Equal(t, 1, calls, "update and insert fallback share one transaction")
	require.Equal(t, int64(42), user.ID)
	require.Equal(t, username, user.Username)
}

func TestUpsertPropagatesUpdateError(t *testing.T) {
	repo := stubRepo{
		updateFn: func(_ int64, _ UpdateParams) (*User, error) {
			return nil, storage.ErrUnavailable
		},
		insertFn: func(_ int64, _ CreateParams) (*User, error) {
			t.Fatal("insert must not run when update fails with a non-notfound error")
			return nil, nil
		},
	}

	_, err := newTestService(repo).Upsert(context.Background(), 5, UpdateInput{})
	require.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestDeleteDelegates(t *testing.T) {
	var deleted int64
	repo := stubRepo{
		deleteFn: func(id int64) error {
			deleted = id
			return nil
		},
	}

	require.NoError(t, newTestService(repo).Delete(context.Background(), 9))
	require.Equal(t, int64(9), deleted)
}
