package postgres

import (
	"context"
	"fmt"

	"github.com/eventconnect/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

// maxCreateAttempts bounds the retry on a primary-key collision. PUT may
// insert explicit ids ahead of the identity sequence; each failed insert
// consumes a sequence value, so retrying walks past the collision.
const maxCreateAttempts = 3

func (r *UserRepository) queryer() DBTX {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *UserRepository) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, username, password
  FROM users
 ORDER BY id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", mapError(err))
	}
	defer rows.Close()

	items := make([]users.User, 0)
	for rows.Next() {
		var user users.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Password); err != nil {
			return nil, fmt.Errorf("scan user: %w", mapError(err))
		}
		items = append(items, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", mapError(err))
	}
	return items, nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*users.User, error) {
	var user users.User
	err := r.queryer().QueryRow(ctx, `
SELECT id, username, password
  FROM users
 WHERE id = $1
`, id).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", mapError(err))
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	var user users.User
	err := r.queryer().QueryRow(ctx, `
SELECT id, username, password
  FROM users
 WHERE username = $1
`, username).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", mapError(err))
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	queryer := r.queryer()

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		var user users.User
		err := queryer.QueryRow(ctx, `
INSERT INTO users (username, password)
VALUES ($1, $2)
RETURNING id, username, password
`, params.Username, params.PasswordHash).Scan(&user.ID, &user.Username, &user.Password)
		if err == nil {
			return &user, nil
		}
		if isUniqueViolation(err, "users_pkey") {
			lastErr = err
			continue
		}
		return nil, fmt.Errorf("create user: %w", mapError(err))
	}
	return nil, fmt.Errorf("create user: %w", mapError(lastErr))
}

func (r *UserRepository) Insert(ctx context.Context, id int64, params users.CreateParams) (*users.User, error) {
	var user users.User
	err := r.queryer().QueryRow(ctx, `
INSERT INTO users (id, username, password)
VALUES ($1, $2, $3)
RETURNING id, username, password
`, id, params.Username, params.PasswordHash).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}
	return &user, nil
}

// Update merges non-null parameters over the stored row. Parameters arrive
// as nullable pointers, so an explicit zero value is distinguishable from an
// omitted field.
func (r *UserRepository) Update(ctx context.Context, id int64, params users.UpdateParams) (*users.User, error) {
	var user users.User
	err := r.queryer().QueryRow(ctx, `
UPDATE users
   SET username = COALESCE($2, username),
       password = COALESCE($3, password)
 WHERE id = $1
RETURNING id, username, password
`, id, params.Username, params.PasswordHash).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", mapError(err))
	}
	return &user, nil
}

// Delete is an idempotent no-op when the id is absent. Deleting a user who
// still owns events is blocked by the ownership restriction and surfaces as
// ErrConflict; membership rows cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", mapError(err))
	}
	return nil
}
