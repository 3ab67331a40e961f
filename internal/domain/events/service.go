package events

import (
	"context"
	"errors"
	"time"

	"github.com/eventconnect/server/internal/domain/memberships"
	"github.com/eventconnect/server/internal/storage"
	"github.com/rs/zerolog"
)

const defaultStoreTimeout = 5 * time.Second

// Service composes the event store with the membership registry. Join goes
// through the registry; every read returns the aggregate view with the
// derived joined count.
type Service struct {
	repo    Repository
	members memberships.Repository
	tx      TxRunner
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService wires the event verbs over the store and membership registry.
// tx groups the upsert's update-then-insert steps into one transaction; a nil
// runner executes them directly against the repository.
func NewService(repo Repository, members memberships.Repository, tx TxRunner, timeout time.Duration, logger zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Service{
		repo:    repo,
		members: members,
		tx:      tx,
		timeout: timeout,
		logger:  logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.Get(ctx, id)
}

func (s *Service) ListJoinedByUser(ctx context.Context, userID int64) ([]Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListJoinedByUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, ownerID int64, params CreateParams) (*Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	event, err := s.repo.Create(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("event_id", event.ID).Int64("owner_id", ownerID).Msg("event created")
	return event, nil
}

// Upsert implements PUT: partial update when the event exists, create with
// the explicit id when it does not. The update path never touches the id or
// the owner, even if the payload carried them.
func (s *Service) Upsert(ctx context.Context, id, ownerID int64, params UpdateParams) (*Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var result *Event
	err := s.inTx(ctx, func(repo Repository) error {
		event, err := repo.Update(ctx, id, params)
		if err == nil {
			result = event
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		created, err := repo.Insert(ctx, id, ownerID, createFromUpdate(params))
		if err != nil {
			return err
		}
		s.logger.Info().Int64("event_id", id).Int64("owner_id", ownerID).Msg("event created via upsert")
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
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

// Join records the membership idempotently and returns the event's post-join
// aggregate view.
func (s *Service) Join(ctx context.Context, eventID, userID int64) (*Event, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.members.Insert(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, eventID)
}

// Count reports the number of members of an event; zero when the event has
// no members or does not exist.
func (s *Service) Count(ctx context.Context, eventID int64) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.members.Count(ctx, eventID)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func createFromUpdate(params UpdateParams) CreateParams {
	created := CreateParams{Time: params.Time}
	if params.Title != nil {
		created.Title = *params.Title
	}
	if params.Description != nil {
		created.Description = *params.Description
	}
	if params.Location != nil {
		created.Location = *params.Location
	}
	if params.Cost != nil {
		created.Cost = *params.Cost
	}
	if params.Threshold != nil {
		created.Threshold = *params.Threshold
	}
	if params.Capacity != nil {
		created.Capacity = *params.Capacity
	}
	if params.Category != nil {
		created.Category = *params.Category
	}
	return created
}
