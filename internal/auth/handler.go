package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/pkg/response"
	"github.com/saemahesh/webinar-ai/pkg/utils"
)

// SignupRequest is the body for POST /auth/signup. All signups create host
// accounts; admins are provisioned out of band.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Company  string `json:"company"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Signup handles POST /auth/signup. The account lands in pending status and
// cannot log in until an admin approves it.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, req.Company)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	// No token on signup: the account awaits approval.
	response.Created(c, gin.H{
		"user":    user.ToPublic(),
		"message": "account created, awaiting admin approval",
	})
}

// Login handles POST /auth/login. Pending and rejected hosts are told their
// status instead of receiving a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if user.Role == models.RoleHost {
		switch user.Status {
		case models.StatusPending:
			response.Forbidden(c, "account pending approval")
			return
		case models.StatusRejected:
			response.Forbidden(c, "account has been rejected")
			return
		}
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role), string(user.Status))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Me handles GET /auth/me for the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := c.MustGet("claims").(*Claims)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: user.ToPublic()})
}
