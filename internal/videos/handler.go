package videos

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/internal/webinars"
	"github.com/saemahesh/webinar-ai/pkg/response"
	"github.com/saemahesh/webinar-ai/pkg/storage"
)

// Handler handles session video endpoints. Every webinar plays exactly one
// pre-recorded video; these endpoints let the host upload and replace it.
type Handler struct {
	webinarRepo *webinars.Repository
	s3          *storage.S3
	logger      *zap.Logger
}

// NewHandler creates a videos handler.
func NewHandler(webinarRepo *webinars.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{webinarRepo: webinarRepo, s3: s3, logger: logger}
}

// webinar loads the webinar from the id param, or writes an error response.
// Ownership was already checked by route middleware.
func (h *Handler) webinar(c *gin.Context) *models.Webinar {
	w, err := h.webinarRepo.GetByID(c.Request.Context(), mustID(c))
	if err != nil {
		response.NotFound(c, "webinar not found")
		return nil
	}
	return w
}

// GenerateUploadURL handles POST /webinars/:id/video/upload-url. The browser
// uploads straight to S3 with the returned URL, then confirms with Attach.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "storage not configured")
		return
	}
	w := h.webinar(c)
	if w == nil {
		return
	}
	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !storage.ValidateVideoType(req.ContentType) {
		response.BadRequest(c, "invalid video type: mp4 or webm only")
		return
	}
	key := storage.VideoKey(w.ID.String(), req.Filename)
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), h.s3.VideosBucket(), key, req.ContentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign video upload failed", zap.Error(err), zap.String("webinar_id", w.ID.String()))
		response.Internal(c, "failed to create upload URL")
		return
	}
	response.OK(c, gin.H{"upload_url": url, "key": key})
}

// Attach handles PUT /webinars/:id/video, recording the uploaded object key
// and the video duration reported by the client player.
func (h *Handler) Attach(c *gin.Context) {
	w := h.webinar(c)
	if w == nil {
		return
	}
	var req struct {
		Key             string `json:"key" binding:"required"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.DurationSeconds < 0 {
		response.BadRequest(c, "duration must not be negative")
		return
	}
	if h.s3 != nil {
		if _, err := h.s3.HeadObject(c.Request.Context(), h.s3.VideosBucket(), req.Key); err != nil {
			response.BadRequest(c, "video object not found; upload it first")
			return
		}
	}
	if err := h.webinarRepo.SetVideo(c.Request.Context(), w.ID, req.Key, req.DurationSeconds); err != nil {
		response.Internal(c, "failed to attach video")
		return
	}
	response.OK(c, gin.H{"id": w.ID, "video_key": req.Key, "video_duration_seconds": req.DurationSeconds})
}

// Upload handles POST /webinars/:id/video (multipart, server-side upload).
// Fallback for hosts whose network blocks direct-to-S3 PUTs.
func (h *Handler) Upload(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "storage not configured")
		return
	}
	w := h.webinar(c)
	if w == nil {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > storage.MaxVideoFileSize {
		response.BadRequest(c, "file exceeds 4GB limit")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateVideoType(contentType) {
		response.BadRequest(c, "invalid video type: mp4 or webm only")
		return
	}

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	key := storage.VideoKey(w.ID.String(), file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), h.s3.VideosBucket(), key, contentType, rc, file.Size); err != nil {
		h.logger.Error("video upload failed", zap.Error(err), zap.String("webinar_id", w.ID.String()))
		response.Internal(c, "failed to upload video")
		return
	}

	durationSec := 0
	if v := c.PostForm("duration_seconds"); v != "" {
		durationSec = atoiOrZero(v)
	}
	if err := h.webinarRepo.SetVideo(c.Request.Context(), w.ID, key, durationSec); err != nil {
		response.Internal(c, "failed to attach video")
		return
	}
	response.Created(c, gin.H{"id": w.ID, "video_key": key, "video_duration_seconds": durationSec})
}

// UploadChatImage handles POST /webinars/:id/chat-image (multipart). The
// returned URL goes into image and cta scheduled messages; it is served by the
// public image route rather than a presigned URL so it cannot expire
// mid-session.
func (h *Handler) UploadChatImage(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "storage not configured")
		return
	}
	w := h.webinar(c)
	if w == nil {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "image exceeds 10MB limit")
		return
	}
	if !storage.ValidateImageFilename(file.Filename) {
		response.BadRequest(c, "invalid image type: jpg, png, webp or gif only")
		return
	}

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded image failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	key := storage.ImageKey(w.ID.String(), file.Filename)
	contentType := storage.ContentTypeForImage(file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), h.s3.ImagesBucket(), key, contentType, rc, file.Size); err != nil {
		h.logger.Error("chat image upload failed", zap.Error(err), zap.String("webinar_id", w.ID.String()))
		response.Internal(c, "failed to upload image")
		return
	}

	response.Created(c, gin.H{
		"key":       key,
		"image_url": "/public/images/" + strings.TrimPrefix(key, storage.FolderImages+"/"),
	})
}

// ServeChatImage handles GET /public/images/*key, streaming a chat image from
// the private bucket to unauthenticated viewers.
func (h *Handler) ServeChatImage(c *gin.Context) {
	if h.s3 == nil {
		response.NotFound(c, "image not found")
		return
	}
	key, ok := chatImageKey(c.Param("key"))
	if !ok {
		response.BadRequest(c, "invalid image key")
		return
	}
	body, contentType, err := h.s3.GetObjectStream(c.Request.Context(), h.s3.ImagesBucket(), key)
	if err != nil {
		response.NotFound(c, "image not found")
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = storage.ContentTypeForImage(key)
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

// chatImageKey maps the wildcard route param to an object key confined to the
// chat image prefix. Traversal or non-canonical paths are rejected.
func chatImageKey(param string) (string, bool) {
	rel := strings.TrimPrefix(param, "/")
	if rel == "" || rel != path.Clean(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return path.Join(storage.FolderImages, rel), true
}

// Delete handles DELETE /webinars/:id/video.
func (h *Handler) Delete(c *gin.Context) {
	w := h.webinar(c)
	if w == nil {
		return
	}
	if w.VideoKey == "" {
		response.NotFound(c, "no video attached")
		return
	}
	if h.s3 != nil {
		if err := h.s3.DeleteVideo(c.Request.Context(), w.VideoKey); err != nil {
			h.logger.Warn("delete video object failed", zap.Error(err), zap.String("key", w.VideoKey))
		}
	}
	if err := h.webinarRepo.SetVideo(c.Request.Context(), w.ID, "", 0); err != nil {
		response.Internal(c, "failed to detach video")
		return
	}
	response.NoContent(c)
}
