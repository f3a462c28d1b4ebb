package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saemahesh/webinar-ai/internal/registrations"
	"github.com/saemahesh/webinar-ai/internal/sessionlog"
	"github.com/saemahesh/webinar-ai/internal/webinars"
	"github.com/saemahesh/webinar-ai/pkg/response"
)

// Handler handles GET /webinars/:id/analytics.
type Handler struct {
	registrationRepo *registrations.Repository
	sessionRepo      *sessionlog.Repository
	webinarRepo      *webinars.Repository
}

// NewHandler creates an analytics handler.
func NewHandler(
	registrationRepo *registrations.Repository,
	sessionRepo *sessionlog.Repository,
	webinarRepo *webinars.Repository,
) *Handler {
	return &Handler{
		registrationRepo: registrationRepo,
		sessionRepo:      sessionRepo,
		webinarRepo:      webinarRepo,
	}
}

// SummaryResponse is the per-webinar analytics shape for the host dashboard.
type SummaryResponse struct {
	TotalRegistrations int      `json:"total_registrations"`
	TotalAttended      int      `json:"total_attended"`
	TotalNoShow        int      `json:"total_no_show"`
	DistinctViewers    int      `json:"distinct_viewers"`
	AvgWatchSeconds    int64    `json:"avg_watch_seconds"`
	ConversionRate     *float64 `json:"conversion_rate,omitempty"`
}

// GetByWebinar handles GET /webinars/:id/analytics. Ownership is enforced by
// route middleware.
func (h *Handler) GetByWebinar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}

	ctx := c.Request.Context()

	if _, err := h.webinarRepo.GetByID(ctx, id); err != nil {
		response.NotFound(c, "webinar not found")
		return
	}

	total, attended, err := h.registrationRepo.CountByWebinar(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load registration counts")
		return
	}
	noShow := total - attended
	if noShow < 0 {
		noShow = 0
	}

	agg, err := h.sessionRepo.Aggregates(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load watch aggregates")
		return
	}

	var avgWatchSeconds int64
	if agg.DistinctViewers > 0 {
		avgWatchSeconds = agg.TotalWatchSeconds / int64(agg.DistinctViewers)
	}

	out := SummaryResponse{
		TotalRegistrations: total,
		TotalAttended:      attended,
		TotalNoShow:        noShow,
		DistinctViewers:    agg.DistinctViewers,
		AvgWatchSeconds:    avgWatchSeconds,
	}
	if total > 0 {
		conv := float64(attended) / float64(total)
		out.ConversionRate = &conv
	}

	response.OK(c, out)
}
