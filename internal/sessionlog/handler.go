package sessionlog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saemahesh/webinar-ai/pkg/response"
)

// Handler handles GET /webinars/:id/sessions.
type Handler struct {
	repo *Repository
}

// NewHandler creates a session log handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListByWebinar handles GET /webinars/:id/sessions (host view of who watched
// and for how long).
func (h *Handler) ListByWebinar(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	list, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		response.Internal(c, "failed to list sessions")
		return
	}
	response.OK(c, gin.H{"sessions": list})
}
