package sessionlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Repository handles session_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a session log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LogJoin inserts a row when a viewer enters a room.
func (r *Repository) LogJoin(ctx context.Context, webinarID uuid.UUID, attendeeID *uuid.UUID, viewerEmail string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_logs (id, webinar_id, attendee_id, viewer_email, joined_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW())`,
		webinarID, attendeeID, viewerEmail)
	return err
}

// LogLeave closes the most recent open session for this viewer in this room
// and records the watch duration.
func (r *Repository) LogLeave(ctx context.Context, webinarID uuid.UUID, viewerEmail string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE session_logs s SET left_at = NOW(),
			watch_seconds = GREATEST(0, EXTRACT(EPOCH FROM (NOW() - s.joined_at))::BIGINT)
		 FROM (SELECT id FROM session_logs
			WHERE webinar_id = $1 AND viewer_email = $2 AND left_at IS NULL
			ORDER BY joined_at DESC LIMIT 1) AS sub
		 WHERE s.id = sub.id`,
		webinarID, viewerEmail)
	return err
}

// WatchAggregates holds summed watch time and distinct viewer count.
type WatchAggregates struct {
	TotalWatchSeconds int64
	DistinctViewers   int
}

// Aggregates returns total watch time and distinct viewer count for a webinar.
func (r *Repository) Aggregates(ctx context.Context, webinarID uuid.UUID) (*WatchAggregates, error) {
	const q = `SELECT COALESCE(SUM(watch_seconds), 0), COUNT(DISTINCT viewer_email)
		FROM session_logs WHERE webinar_id = $1 AND left_at IS NOT NULL`
	var agg WatchAggregates
	if err := r.pool.QueryRow(ctx, q, webinarID).Scan(&agg.TotalWatchSeconds, &agg.DistinctViewers); err != nil {
		return nil, err
	}
	return &agg, nil
}

// ListByWebinar returns sessions for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.SessionLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, webinar_id, attendee_id, viewer_email, joined_at, left_at, watch_seconds, created_at
		 FROM session_logs WHERE webinar_id = $1 ORDER BY joined_at DESC`,
		webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SessionLog
	for rows.Next() {
		var s models.SessionLog
		if err := rows.Scan(&s.ID, &s.WebinarID, &s.AttendeeID, &s.ViewerEmail, &s.JoinedAt,
			&s.LeftAt, &s.WatchSeconds, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
