package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// timestamptz converts an optional time into its pgtype form; a nil pointer
// becomes SQL NULL.
func timestamptz(value *time.Time) pgtype.Timestamptz {
	if value == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *value, Valid: true}
}
