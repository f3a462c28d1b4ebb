package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/middleware"
	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/pkg/response"
)

// UserStore is the slice of the user repository the admin endpoints consume.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByStatus(ctx context.Context, status models.Status) ([]models.UserPublic, error)
	Approve(ctx context.Context, id, adminID uuid.UUID) (*models.User, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

// Handler handles admin HTTP endpoints: host approval and platform stats.
type Handler struct {
	users  UserStore
	stats  *Repository
	logger *zap.Logger
}

// NewHandler creates an admin handler.
func NewHandler(users UserStore, stats *Repository, logger *zap.Logger) *Handler {
	return &Handler{users: users, stats: stats, logger: logger}
}

// ListHosts handles GET /admin/hosts?status=pending.
func (h *Handler) ListHosts(c *gin.Context) {
	status := models.Status(c.DefaultQuery("status", string(models.StatusPending)))
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		response.BadRequest(c, "invalid status filter")
		return
	}
	list, err := h.users.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.Internal(c, "failed to list hosts")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: list})
}

// ApproveHost handles PUT /admin/hosts/:id/approve.
func (h *Handler) ApproveHost(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid host id")
		return
	}
	adminID, _ := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.users.Approve(c.Request.Context(), hostID, adminID)
	if err != nil {
		response.NotFound(c, "host not found")
		return
	}
	h.logger.Info("host approved",
		zap.String("host_id", hostID.String()),
		zap.String("admin_id", adminID.String()))
	c.JSON(http.StatusOK, response.Body{Success: true, Data: user.ToPublic()})
}

// RejectHost handles PUT /admin/hosts/:id/reject.
func (h *Handler) RejectHost(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid host id")
		return
	}
	user, err := h.users.Reject(c.Request.Context(), hostID)
	if err != nil {
		response.NotFound(c, "host not found")
		return
	}
	h.logger.Info("host rejected", zap.String("host_id", hostID.String()))
	c.JSON(http.StatusOK, response.Body{Success: true, Data: user.ToPublic()})
}

// DeleteHost handles DELETE /admin/hosts/:id. Admin accounts cannot be
// deleted; host deletion cascades to their webinars and registrations.
func (h *Handler) DeleteHost(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid host id")
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), hostID)
	if err != nil {
		response.NotFound(c, "host not found")
		return
	}
	if user.Role == models.RoleAdmin {
		response.Forbidden(c, "cannot delete admin accounts")
		return
	}
	if err := h.users.Delete(c.Request.Context(), hostID); err != nil {
		response.Internal(c, "failed to delete host")
		return
	}
	h.logger.Info("host deleted", zap.String("host_id", hostID.String()))
	c.JSON(http.StatusOK, response.Body{Success: true, Data: gin.H{"id": hostID}})
}

// PlatformStats handles GET /admin/stats.
func (h *Handler) PlatformStats(c *gin.Context) {
	hostCounts, err := h.users.CountByStatus(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load stats")
		return
	}
	totals, err := h.stats.Totals(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load stats")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: gin.H{
		"hosts_pending":       hostCounts[models.StatusPending],
		"hosts_approved":      hostCounts[models.StatusApproved],
		"hosts_rejected":      hostCounts[models.StatusRejected],
		"total_webinars":      totals.Webinars,
		"total_registrations": totals.Registrations,
	}})
}
