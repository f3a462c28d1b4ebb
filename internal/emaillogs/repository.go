package emaillogs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a queued email log entry and fills in the generated ID.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	const q = `INSERT INTO email_logs (id, webinar_id, attendee_id, recipient, subject, email_type, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, el.WebinarID, el.AttendeeID, el.Recipient, el.Subject, el.EmailType, models.EmailQueued).
		Scan(&el.ID, &el.CreatedAt)
}

// MarkSent records successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $1, sent_at = $2, error_message = NULL WHERE id = $3`,
		models.EmailSent, time.Now(), id)
	return err
}

// MarkFailed records a delivery failure with the error message.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $1, error_message = $2 WHERE id = $3`,
		models.EmailFailed, errMsg, id)
	return err
}

// ListByWebinar returns email logs for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, webinar_id, attendee_id, recipient, COALESCE(subject,''), email_type, status,
			COALESCE(error_message,''), sent_at, created_at
		FROM email_logs WHERE webinar_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.WebinarID, &el.AttendeeID, &el.Recipient, &el.Subject,
			&el.EmailType, &el.Status, &el.Error, &el.SentAt, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}
