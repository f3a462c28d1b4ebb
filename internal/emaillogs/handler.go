package emaillogs

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saemahesh/webinar-ai/internal/registrations"
	"github.com/saemahesh/webinar-ai/internal/webinars"
	"github.com/saemahesh/webinar-ai/pkg/queue"
	"github.com/saemahesh/webinar-ai/pkg/response"
)

// Enqueuer queues email jobs for the worker.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo        *Repository
	webinarRepo *webinars.Repository
	attendees   *registrations.Repository
	emails      Enqueuer
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, webinarRepo *webinars.Repository, attendees *registrations.Repository, emails Enqueuer) *Handler {
	return &Handler{repo: repo, webinarRepo: webinarRepo, attendees: attendees, emails: emails}
}

// ListByWebinar handles GET /webinars/:id/emails. Ownership is validated by
// upstream middleware.
func (h *Handler) ListByWebinar(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	logs, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}

// ResendRequest is the body for POST /webinars/:id/emails/resend.
type ResendRequest struct {
	Email     string `json:"email" binding:"required,email"`
	EmailType string `json:"email_type"`
}

// Resend handles POST /webinars/:id/emails/resend, re-queueing a confirmation
// or reminder for a single registrant.
func (h *Handler) Resend(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var body ResendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if h.emails == nil {
		response.ServiceUnavailable(c, "email worker not configured")
		return
	}
	w, err := h.webinarRepo.GetByID(c.Request.Context(), webinarID)
	if err != nil {
		response.NotFound(c, "webinar not found")
		return
	}
	a, err := h.attendees.GetByWebinarAndEmail(c.Request.Context(), webinarID, body.Email)
	if err != nil || a == nil {
		response.NotFound(c, "registration not found")
		return
	}

	emailType := body.EmailType
	if emailType == "" {
		emailType = "webinar_reminder"
	}
	payload := queue.EmailPayload{
		EmailType:      emailType,
		WebinarID:      w.ID,
		AttendeeID:     a.ID,
		RecipientEmail: a.Email,
		Subject:        "Reminder: " + w.Title,
		BodyHTML: fmt.Sprintf("<p>Hi %s,</p><p><b>%s</b> starts %s. See you there.</p>",
			a.FullName, w.Title, w.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST")),
	}
	if err := h.emails.EnqueueEmail(c.Request.Context(), payload); err != nil {
		response.Internal(c, "failed to queue email")
		return
	}
	response.OK(c, gin.H{"message": "email queued"})
}
