package webinars

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Repository handles webinar persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webinar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const webinarColumns = `id, title, description, starts_at, duration_minutes, max_attendees,
	require_registration, status, host_id, COALESCE(video_key,''), COALESCE(video_duration_seconds,0),
	custom_fields, scheduled_messages, created_at, updated_at`

func scanWebinar(row interface{ Scan(...any) error }) (*models.Webinar, error) {
	var w models.Webinar
	var customFields, messages []byte
	err := row.Scan(&w.ID, &w.Title, &w.Description, &w.StartsAt, &w.DurationMinutes, &w.MaxAttendees,
		&w.RequireRegistration, &w.Status, &w.HostID, &w.VideoKey, &w.VideoDurationSec,
		&customFields, &messages, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(customFields) > 0 {
		w.CustomFields = json.RawMessage(customFields)
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &w.ScheduledMessages); err != nil {
			return nil, err
		}
	}
	return &w, nil
}

// Create inserts a new webinar.
func (r *Repository) Create(ctx context.Context, w *models.Webinar) error {
	messages, err := json.Marshal(w.ScheduledMessages)
	if err != nil {
		return err
	}
	const q = `INSERT INTO webinars (id, title, description, starts_at, duration_minutes, max_attendees,
			require_registration, status, host_id, custom_fields, scheduled_messages)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, w.Title, w.Description, w.StartsAt, w.DurationMinutes, w.MaxAttendees,
		w.RequireRegistration, w.Status, w.HostID, nullableJSON(w.CustomFields), messages).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

// GetByID returns a webinar by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	return scanWebinar(r.pool.QueryRow(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE id = $1`, id))
}

// List returns webinars, optionally filtered by host.
func (r *Repository) List(ctx context.Context, hostID *uuid.UUID) ([]models.Webinar, error) {
	q := `SELECT ` + webinarColumns + ` FROM webinars`
	var args []interface{}
	if hostID != nil {
		q += ` WHERE host_id = $1`
		args = append(args, *hostID)
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY starts_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Webinar
	for rows.Next() {
		w, err := scanWebinar(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

// Update persists editable webinar fields.
func (r *Repository) Update(ctx context.Context, w *models.Webinar) error {
	const q = `UPDATE webinars SET title = $1, description = $2, starts_at = $3, duration_minutes = $4,
			max_attendees = $5, require_registration = $6, custom_fields = $7, updated_at = NOW()
		WHERE id = $8`
	_, err := r.pool.Exec(ctx, q, w.Title, w.Description, w.StartsAt, w.DurationMinutes,
		w.MaxAttendees, w.RequireRegistration, nullableJSON(w.CustomFields), w.ID)
	return err
}

// SetStatus persists a host's forced room status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.WebinarStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE webinars SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

// SetScheduledMessages replaces the webinar's scheduled chat script.
func (r *Repository) SetScheduledMessages(ctx context.Context, id uuid.UUID, messages []models.ScheduledMessage) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `UPDATE webinars SET scheduled_messages = $1, updated_at = NOW() WHERE id = $2`, raw, id)
	return err
}

// SetVideo records the uploaded video's object key and duration.
func (r *Repository) SetVideo(ctx context.Context, id uuid.UUID, videoKey string, durationSec int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE webinars SET video_key = $1, video_duration_seconds = $2, updated_at = NOW() WHERE id = $3`,
		videoKey, durationSec, id)
	return err
}

// Delete removes a webinar by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM webinars WHERE id = $1`, id)
	return err
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
