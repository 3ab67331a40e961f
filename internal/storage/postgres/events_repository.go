package postgres

import (
	"context"
	"fmt"

	"github.com/eventconnect/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ events.Repository = (*EventRepository)(nil)

// eventView is the joined read model: every read recomputes joined_count
// from memberships, so the count can never go stale independently of the
// membership relation. Null times sort last; id breaks ties.
const eventView = `
SELECT e.id, e.owner_id, e.title, e.description, e.time, e.location,
       e.cost, e.threshold, e.capacity, e.category,
       COUNT(m.user_id) AS joined_count
  FROM events e
  LEFT JOIN memberships m ON m.event_id = e.id
`

const eventViewSuffix = `
 GROUP BY e.id
 ORDER BY e.time ASC NULLS LAST, e.id ASC
`

func (r *EventRepository) queryer() DBTX {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, eventView+eventViewSuffix)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", mapError(err))
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *EventRepository) Get(ctx context.Context, id int64) (*events.Event, error) {
	rows, err := r.queryer().Query(ctx, eventView+` WHERE e.id = $1`+eventViewSuffix, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", mapError(err))
	}
	defer rows.Close()

	items, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("get event: %w", mapError(pgx.ErrNoRows))
	}
	return &items[0], nil
}

func (r *EventRepository) ListJoinedByUser(ctx context.Context, userID int64) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT e.id, e.owner_id, e.title, e.description, e.time, e.location,
       e.cost, e.threshold, e.capacity, e.category,
       COUNT(m.user_id) AS joined_count
  FROM events e
  JOIN memberships mine ON mine.event_id = e.id AND mine.user_id = $1
  LEFT JOIN memberships m ON m.event_id = e.id
 GROUP BY e.id
 ORDER BY e.time ASC NULLS LAST, e.id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list joined events: %w", mapError(err))
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *EventRepository) Create(ctx context.Context, ownerID int64, params events.CreateParams) (*events.Event, error) {
	queryer := r.queryer()

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		var id int64
		err := queryer.QueryRow(ctx, `
INSERT INTO events (owner_id, title, description, time, location, cost, threshold, capacity, category)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`, ownerID, params.Title, params.Description, timestamptz(params.Time), params.Location,
			params.Cost, params.Threshold, params.Capacity, params.Category).Scan(&id)
		if err == nil {
			return r.Get(ctx, id)
		}
		if isUniqueViolation(err, "events_pkey") {
			lastErr = err
			continue
		}
		return nil, fmt.Errorf("create event: %w", mapError(err))
	}
	return nil, fmt.Errorf("create event: %w", mapError(lastErr))
}

func (r *EventRepository) Insert(ctx context.Context, id, ownerID int64, params events.CreateParams) (*events.Event, error) {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO events (id, owner_id, title, description, time, location, cost, threshold, capacity, category)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, id, ownerID, params.Title, params.Description, timestamptz(params.Time), params.Location,
		params.Cost, params.Threshold, params.Capacity, params.Category)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", mapError(err))
	}
	return r.Get(ctx, id)
}

// Update merges non-null parameters over the stored row. The id and owner
// columns are not in the SET list and cannot be mutated through this path.
func (r *EventRepository) Update(ctx context.Context, id int64, params events.UpdateParams) (*events.Event, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title       = COALESCE($2, title),
       description = COALESCE($3, description),
       time        = COALESCE($4, time),
       location    = COALESCE($5, location),
       cost        = COALESCE($6, cost),
       threshold   = COALESCE($7, threshold),
       capacity    = COALESCE($8, capacity),
       category    = COALESCE($9, category)
 WHERE id = $1
`, id, params.Title, params.Description, timestamptz(params.Time), params.Location,
		params.Cost, params.Threshold, params.Capacity, params.Category)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("update event: %w", mapError(pgx.ErrNoRows))
	}
	return r.Get(ctx, id)
}

// Delete is an idempotent no-op when the id is absent; membership rows for
// the event cascade away with it.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", mapError(err))
	}
	return nil
}

func scanEvents(rows pgx.Rows) ([]events.Event, error) {
	items := make([]events.Event, 0)
	for rows.Next() {
		var (
			event events.Event
			when  pgtype.Timestamptz
		)
		if err := rows.Scan(
			&event.ID,
			&event.OwnerID,
			&event.Title,
			&event.Description,
			&when,
			&event.Location,
			&event.Cost,
			&event.Threshold,
			&event.Capacity,
			&event.Category,
			&event.JoinedCount,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", mapError(err))
		}
		if when.Valid {
			value := when.Time
			event.Time = &value
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", mapError(err))
	}
	return items, nil
}
