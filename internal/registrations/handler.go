package registrations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/internal/webinars"
	"github.com/saemahesh/webinar-ai/pkg/queue"
	"github.com/saemahesh/webinar-ai/pkg/response"
)

// EmailEnqueuer queues a confirmation email for async delivery. Nil-able so
// the API works without a worker (emails are best effort).
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// RegisterRequest is the body for POST /public/webinars/:id/register.
type RegisterRequest struct {
	Email         string            `json:"email" binding:"required,email"`
	FullName      string            `json:"full_name" binding:"required"`
	Company       string            `json:"company"`
	FormResponses map[string]string `json:"form_responses,omitempty"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	repo        *Repository
	webinarRepo *webinars.Repository
	emails      EmailEnqueuer
	logger      *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(repo *Repository, webinarRepo *webinars.Repository, emails EmailEnqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, webinarRepo: webinarRepo, emails: emails, logger: logger}
}

// Register handles POST /public/webinars/:id/register.
func (h *Handler) Register(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	w, err := h.webinarRepo.GetByID(c.Request.Context(), webinarID)
	if err != nil || w == nil {
		response.NotFound(c, "webinar not found")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if msg := validateFormResponses(w.CustomFields, req.FormResponses); msg != "" {
		response.BadRequest(c, msg)
		return
	}

	existing, err := h.repo.GetByWebinarAndEmail(c.Request.Context(), webinarID, req.Email)
	if err != nil {
		h.logger.Error("registration lookup failed", zap.Error(err), zap.String("webinar_id", webinarID.String()))
		response.Internal(c, "failed to register")
		return
	}
	if existing != nil {
		response.Conflict(c, "this email is already registered")
		return
	}

	if w.MaxAttendees > 0 {
		total, _, err := h.repo.CountByWebinar(c.Request.Context(), webinarID)
		if err != nil {
			response.Internal(c, "failed to register")
			return
		}
		if total >= w.MaxAttendees {
			response.Conflict(c, "webinar is full")
			return
		}
	}

	var customFields json.RawMessage
	if len(req.FormResponses) > 0 {
		customFields, err = json.Marshal(req.FormResponses)
		if err != nil {
			response.BadRequest(c, "invalid form_responses")
			return
		}
	}
	a := &models.Attendee{
		WebinarID:    webinarID,
		Email:        req.Email,
		FullName:     req.FullName,
		Company:      req.Company,
		CustomFields: customFields,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		h.logger.Error("create registration failed", zap.Error(err), zap.String("webinar_id", webinarID.String()))
		response.Internal(c, "failed to register")
		return
	}

	if h.emails != nil {
		payload := queue.EmailPayload{
			EmailType:      "registration_confirmation",
			WebinarID:      w.ID,
			AttendeeID:     a.ID,
			RecipientEmail: a.Email,
			Subject:        "You're registered: " + w.Title,
			BodyHTML: fmt.Sprintf("<p>Hi %s,</p><p>You're registered for <b>%s</b> starting %s.</p>",
				a.FullName, w.Title, w.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST")),
		}
		if err := h.emails.EnqueueEmail(c.Request.Context(), payload); err != nil {
			h.logger.Warn("enqueue confirmation email failed", zap.Error(err))
		}
	}

	response.Created(c, gin.H{
		"registration_id": a.ID,
		"webinar_id":      w.ID,
		"starts_at":       w.StartsAt,
		"join_url":        "/room/" + w.ID.String() + "?email=" + a.Email,
	})
}

// CheckRegistration handles GET /public/webinars/:id/registration?email=.
// The join page calls this before opening the room.
func (h *Handler) CheckRegistration(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email required")
		return
	}
	a, err := h.repo.GetByWebinarAndEmail(c.Request.Context(), webinarID, email)
	if err != nil {
		response.Internal(c, "failed to check registration")
		return
	}
	if a == nil {
		response.NotFound(c, "not registered")
		return
	}
	response.OK(c, gin.H{
		"registered": true,
		"full_name":  a.FullName,
	})
}

// ListByWebinar handles GET /webinars/:id/attendees (host view).
func (h *Handler) ListByWebinar(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	list, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		response.Internal(c, "failed to list attendees")
		return
	}
	response.OK(c, list)
}

// validateFormResponses checks required host-defined fields were answered.
func validateFormResponses(config json.RawMessage, responses map[string]string) string {
	if len(config) == 0 {
		return ""
	}
	var fields []models.FormFieldConfig
	if err := json.Unmarshal(config, &fields); err != nil {
		return ""
	}
	for _, f := range fields {
		if f.Required && responses[f.ID] == "" {
			return "missing required field: " + f.Label
		}
	}
	return ""
}
