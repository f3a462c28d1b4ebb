package liveroom

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/pkg/response"
)

// AttendeeMarker records that a registrant actually showed up.
type AttendeeMarker interface {
	MarkAttended(ctx context.Context, webinarID uuid.UUID, email string) error
}

// PlaybackURLFunc resolves a webinar's video object key to a playable URL.
type PlaybackURLFunc func(ctx context.Context, videoKey string) (string, error)

// JoinRequest is the body for POST /public/webinars/:id/join.
type JoinRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Handler handles the room join endpoint.
type Handler struct {
	webinars    WebinarLoader
	gate        *Gate
	marker      AttendeeMarker
	playbackURL PlaybackURLFunc
	logger      *zap.Logger
}

// NewHandler creates a room join handler. playbackURL may be nil when storage
// is not configured.
func NewHandler(webinars WebinarLoader, gate *Gate, marker AttendeeMarker, playbackURL PlaybackURLFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{webinars: webinars, gate: gate, marker: marker, playbackURL: playbackURL, logger: logger}
}

// Join handles POST /public/webinars/:id/join. On success the viewer gets the
// session snapshot (status, playback offset, audience count) plus a playback
// URL when the room is live.
func (h *Handler) Join(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	w, err := h.webinars.GetByID(c.Request.Context(), webinarID)
	if err != nil || w == nil {
		response.NotFound(c, "webinar not found")
		return
	}

	state, err := h.gate.Join(c.Request.Context(), w, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotRegistered):
			response.Forbidden(c, "not registered for this webinar")
		case errors.Is(err, ErrSessionEnded):
			response.Gone(c, "this session has ended")
		default:
			response.Internal(c, "failed to join room")
		}
		return
	}

	if h.marker != nil {
		if err := h.marker.MarkAttended(c.Request.Context(), webinarID, req.Email); err != nil {
			h.logger.Warn("mark attended failed", zap.Error(err), zap.String("webinar_id", webinarID.String()))
		}
	}

	body := gin.H{"session": state}
	if state.Status == StatusLive && w.VideoKey != "" && h.playbackURL != nil {
		url, err := h.playbackURL(c.Request.Context(), w.VideoKey)
		if err != nil {
			h.logger.Warn("playback url failed", zap.Error(err), zap.String("webinar_id", webinarID.String()))
		} else {
			body["video_url"] = url
		}
	}
	response.OK(c, body)
}
