package webinars

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/liveroom"
	"github.com/saemahesh/webinar-ai/internal/middleware"
	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/pkg/response"
)

// RoomNotifier lets the handler nudge running rooms after host edits.
type RoomNotifier interface {
	Reload(webinarID uuid.UUID)
}

// CreateRequest is the body for POST /webinars.
type CreateRequest struct {
	Title               string                    `json:"title" binding:"required"`
	Description         string                    `json:"description"`
	StartsAt            string                    `json:"starts_at" binding:"required"`
	DurationMinutes     int                       `json:"duration_minutes"`
	MaxAttendees        int                       `json:"max_attendees"`
	RequireRegistration *bool                     `json:"require_registration"`
	CustomFields        []models.FormFieldConfig  `json:"custom_fields"`
	ScheduledMessages   []models.ScheduledMessage `json:"scheduled_messages"`
}

// StatusRequest is the body for PUT /webinars/:id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PublicView is the sanitized webinar representation for unauthenticated
// viewers: no host identity, no chat script, and the status resolved from the
// schedule rather than the stored value.
type PublicView struct {
	ID                  uuid.UUID       `json:"id"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	StartsAt            time.Time       `json:"starts_at"`
	DurationMinutes     int             `json:"duration_minutes"`
	Status              liveroom.Status `json:"status"`
	TimeToStartSec      int             `json:"time_to_start_seconds,omitempty"`
	RequireRegistration bool            `json:"require_registration"`
	CustomFields        json.RawMessage `json:"custom_fields,omitempty"`
}

// Handler handles webinar HTTP endpoints.
type Handler struct {
	repo   *Repository
	hub    liveroom.Broadcaster
	rooms  RoomNotifier
	logger *zap.Logger
}

// NewHandler creates a webinar handler.
func NewHandler(repo *Repository, hub liveroom.Broadcaster, rooms RoomNotifier, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, hub: hub, rooms: rooms, logger: logger}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ownedWebinar loads the webinar and verifies the caller is its host or an
// admin. On failure it has already written the response.
func (h *Handler) ownedWebinar(c *gin.Context) *models.Webinar {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return nil
	}
	w, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "webinar not found")
		return nil
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if w.HostID != userID && role != string(models.RoleAdmin) {
		response.Forbidden(c, "not your webinar")
		return nil
	}
	return w
}

func validateMessages(messages []models.ScheduledMessage) string {
	seen := make(map[string]struct{}, len(messages))
	for i := range messages {
		m := &messages[i]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if _, dup := seen[m.ID]; dup {
			return "duplicate message id: " + m.ID
		}
		seen[m.ID] = struct{}{}
		if m.AtSeconds < 0 {
			return "message offset must not be negative"
		}
		switch m.Kind {
		case "":
			m.Kind = models.MessageText
		case models.MessageText, models.MessageImage, models.MessageCTA:
		default:
			return "unknown message kind: " + string(m.Kind)
		}
	}
	return ""
}

// Create handles POST /webinars (approved hosts).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	startsAt, err := parseTime(req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at")
		return
	}
	if req.DurationMinutes < 0 {
		response.BadRequest(c, "duration must not be negative")
		return
	}
	if msg := validateMessages(req.ScheduledMessages); msg != "" {
		response.BadRequest(c, msg)
		return
	}

	var customFields json.RawMessage
	if len(req.CustomFields) > 0 {
		customFields, _ = json.Marshal(req.CustomFields)
	}

	requireReg := true
	if req.RequireRegistration != nil {
		requireReg = *req.RequireRegistration
	}

	w := &models.Webinar{
		Title:               req.Title,
		Description:         req.Description,
		StartsAt:            startsAt,
		DurationMinutes:     req.DurationMinutes,
		MaxAttendees:        req.MaxAttendees,
		RequireRegistration: requireReg,
		Status:              models.WebinarScheduled,
		HostID:              c.MustGet(middleware.ContextUserID).(uuid.UUID),
		CustomFields:        customFields,
		ScheduledMessages:   req.ScheduledMessages,
	}
	if err := h.repo.Create(c.Request.Context(), w); err != nil {
		h.logger.Error("create webinar failed", zap.Error(err))
		response.Internal(c, "failed to create webinar")
		return
	}
	response.Created(c, w)
}

// List handles GET /webinars. Hosts see their own; admins see everything.
func (h *Handler) List(c *gin.Context) {
	var hostID *uuid.UUID
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if role != string(models.RoleAdmin) {
		uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		hostID = &uid
	}
	list, err := h.repo.List(c.Request.Context(), hostID)
	if err != nil {
		response.Internal(c, "failed to list webinars")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /webinars/:id (host view, full record).
func (h *Handler) GetByID(c *gin.Context) {
	w := h.ownedWebinar(c)
	if w == nil {
		return
	}
	response.OK(c, w)
}

// publicView sanitizes a webinar for unauthenticated viewers. The stored
// status is overridden by the schedule unless the host forced an end.
func publicView(w *models.Webinar, now time.Time) PublicView {
	status, timeToStart := liveroom.ResolveStatus(w.StartsAt, w.DurationMinutes, now)
	if w.Status == models.WebinarEnded {
		status = liveroom.StatusEnded
	}
	return PublicView{
		ID:                  w.ID,
		Title:               w.Title,
		Description:         w.Description,
		StartsAt:            w.StartsAt,
		DurationMinutes:     w.DurationMinutes,
		Status:              status,
		TimeToStartSec:      int(timeToStart / time.Second),
		RequireRegistration: w.RequireRegistration,
		CustomFields:        w.CustomFields,
	}
}

// GetPublic handles GET /public/webinars/:id (no auth).
func (h *Handler) GetPublic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	w, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "webinar not found")
		return
	}
	response.OK(c, publicView(w, time.Now()))
}

// ListPublic handles GET /public/webinars, the attendee browse listing: every
// webinar with its dynamic status, sensitive fields stripped.
func (h *Handler) ListPublic(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), nil)
	if err != nil {
		response.Internal(c, "failed to list webinars")
		return
	}
	now := time.Now()
	views := make([]PublicView, 0, len(list))
	for i := range list {
		views = append(views, publicView(&list[i], now))
	}
	response.OK(c, views)
}

// Update handles PUT /webinars/:id.
func (h *Handler) Update(c *gin.Context) {
	w := h.ownedWebinar(c)
	if w == nil {
		return
	}
	var req struct {
		Title               *string                  `json:"title"`
		Description         *string                  `json:"description"`
		StartsAt            *string                  `json:"starts_at"`
		DurationMinutes     *int                     `json:"duration_minutes"`
		MaxAttendees        *int                     `json:"max_attendees"`
		RequireRegistration *bool                    `json:"require_registration"`
		CustomFields        []models.FormFieldConfig `json:"custom_fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Title != nil {
		w.Title = *req.Title
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.StartsAt != nil {
		t, err := parseTime(*req.StartsAt)
		if err != nil {
			response.BadRequest(c, "invalid starts_at")
			return
		}
		w.StartsAt = t
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 0 {
			response.BadRequest(c, "duration must not be negative")
			return
		}
		w.DurationMinutes = *req.DurationMinutes
	}
	if req.MaxAttendees != nil {
		w.MaxAttendees = *req.MaxAttendees
	}
	if req.RequireRegistration != nil {
		w.RequireRegistration = *req.RequireRegistration
	}
	if req.CustomFields != nil {
		w.CustomFields, _ = json.Marshal(req.CustomFields)
	}
	if err := h.repo.Update(c.Request.Context(), w); err != nil {
		response.Internal(c, "failed to update webinar")
		return
	}
	h.rooms.Reload(w.ID)
	response.OK(c, w)
}

// SetStatus handles PUT /webinars/:id/status. Forcing a status broadcasts a
// room_control event so connected viewers react immediately.
func (h *Handler) SetStatus(c *gin.Context) {
	w := h.ownedWebinar(c)
	if w == nil {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	status := models.WebinarStatus(req.Status)
	switch status {
	case models.WebinarScheduled, models.WebinarLive, models.WebinarPaused, models.WebinarEnded:
	default:
		response.BadRequest(c, "invalid status")
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), w.ID, status); err != nil {
		response.Internal(c, "failed to update status")
		return
	}
	h.hub.BroadcastToWebinarAndPublish(w.ID, liveroom.EventRoomControl, gin.H{"action": string(status)})
	h.rooms.Reload(w.ID)
	h.logger.Info("webinar status forced",
		zap.String("webinar_id", w.ID.String()),
		zap.String("status", string(status)))
	response.OK(c, gin.H{"id": w.ID, "status": status})
}

// SetScheduledMessages handles PUT /webinars/:id/scheduled-messages,
// replacing the chat script wholesale.
func (h *Handler) SetScheduledMessages(c *gin.Context) {
	w := h.ownedWebinar(c)
	if w == nil {
		return
	}
	var req struct {
		Messages []models.ScheduledMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if msg := validateMessages(req.Messages); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	if err := h.repo.SetScheduledMessages(c.Request.Context(), w.ID, req.Messages); err != nil {
		response.Internal(c, "failed to update messages")
		return
	}
	h.rooms.Reload(w.ID)
	response.OK(c, gin.H{"id": w.ID, "count": len(req.Messages)})
}

// Delete handles DELETE /webinars/:id.
func (h *Handler) Delete(c *gin.Context) {
	w := h.ownedWebinar(c)
	if w == nil {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), w.ID); err != nil {
		response.Internal(c, "failed to delete webinar")
		return
	}
	response.NoContent(c)
}
