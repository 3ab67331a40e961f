package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventconnect/server/internal/storage"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt password hashing.
const BcryptCost = 12

// DefaultStoreTimeout bounds a single store operation when the config does
// not say otherwise.
const DefaultStoreTimeout = 5 * time.Second

// Service implements the user verb semantics: POST creates with a fresh id,
// PUT upserts, DELETE is an idempotent no-op on a missing id.
type Service struct {
	repo    Repository
	tx      TxRunner
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService wires the user verbs over a repository. tx groups the upsert's
// update-then-insert steps into one transaction; a nil runner executes them
// directly against the repository.
func NewService(repo Repository, tx TxRunner, timeout time.Duration, logger zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Service{
		repo:    repo,
		tx:      tx,
		timeout: timeout,
		logger:  logger.With().Str("component", "users").Logger(),
	}
}

// CreateInput carries the raw credential; it is hashed before it reaches the
// store.
type CreateInput struct {
	Username string
	Password string
}

// UpdateInput mirrors UpdateParams but with the raw password.
type UpdateInput struct {
	Username *string
	Password *string
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Password = MaskedPassword
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return masked(user), nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	params, err := createParams(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	user, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return masked(user), nil
}

// Upsert implements PUT: partial update when the row exists, create with the
// explicit id when it does not. The resulting record is returned either way.
func (s *Service) Upsert(ctx context.Context, id int64, input UpdateInput) (*User, error) {
	params := UpdateParams{Username: input.Username}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		params.PasswordHash = &hash
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	var result *User
	err := s.inTx(ctx, func(repo Repository) error {
		user, err := repo.Update(ctx, id, params)
		if err == nil {
			result = user
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		created, err := repo.Insert(ctx, id, CreateParams{
			Username:     deref(params.Username),
			PasswordHash: deref(params.PasswordHash),
		})
		if err != nil {
			return err
		}
		s.logger.Info().Int64("user_id", id).Msg("user created via upsert")
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return masked(result), nil
}

func (s *Service) inTx(ctx context.Context, fn func(Repository) error) error {
	if s.tx == nil {
		return fn(s.repo)
	}
	return s.tx.InTx(ctx, fn)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.repo.Delete(ctx, id)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func createParams(input CreateInput) (CreateParams, error) {
	hash, err := hashPassword(input.Password)
	if err != nil {
		return CreateParams{}, err
	}
	return CreateParams{Username: input.Username, PasswordHash: hash}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func masked(user *User) *User {
	if user == nil {
		return nil
	}
	copied := *user
	copied.Password = MaskedPassword
	return &copied
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
