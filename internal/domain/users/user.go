package users

import "context"

// MaskedPassword replaces the stored credential on every read path. The raw
// hash never leaves the domain layer.
const MaskedPassword = "[hidden]"

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// CreateParams carries the fields for a new user row. PasswordHash is the
// bcrypt hash, not the raw credential.
type CreateParams struct {
	Username     string
	PasswordHash string
}

// UpdateParams is a partial update: nil fields leave the stored value
// unchanged, non-nil fields overwrite. A caller can therefore set an empty
// string deliberately, which the old sentinel-based merge could not express.
type UpdateParams struct {
	Username     *string
	PasswordHash *string
}

// TxRunner executes fn against a repository bound to a single transaction.
// The upsert path uses it so the update-then-insert fallback cannot interleave
// with a concurrent writer.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create allocates the id from the database sequence.
	Create(ctx context.Context, params CreateParams) (*User, error)
	// Insert writes a row with an explicit id (PUT create-if-absent path).
	Insert(ctx context.Context, id int64, params CreateParams) (*User, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*User, error)
	Delete(ctx context.Context, id int64) error
}
