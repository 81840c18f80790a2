package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/shared/server/respond"
	"workspace-backend/internal/users"
)

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(userID, email, name string) (string, error)
}

// Recorder logs account activity best-effort.
type Recorder interface {
	Record(ctx context.Context, userID string, action analytics.Action, cardID string, metadata map[string]any)
}

// PasswordHandler serves email/password registration and login.
type PasswordHandler struct {
	users    *users.Service
	tokens   TokenSigner
	activity Recorder
}

// NewPasswordHandler constructs a PasswordHandler.
func NewPasswordHandler(userSvc *users.Service, tokens TokenSigner, activity Recorder) *PasswordHandler {
	return &PasswordHandler{users: userSvc, tokens: tokens, activity: activity}
}

// RegisterRoutes attaches password auth routes.
func (h *PasswordHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func (h *PasswordHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and a password of at least 8 characters are required", nil)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "email already registered", nil)
		case errors.Is(err, users.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Internal(c, "failed to register", err)
		}
		return
	}

	h.issue(c, http.StatusCreated, user, analytics.ActionSignup)
}

func (h *PasswordHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
			return
		}
		respond.Internal(c, "failed to log in", err)
		return
	}

	h.issue(c, http.StatusOK, user, analytics.ActionLogin)
}

func (h *PasswordHandler) issue(c *gin.Context, status int, user users.User, action analytics.Action) {
	token, err := h.tokens.Sign(user.ID, user.Email, user.Name)
	if err != nil {
		respond.Internal(c, "failed to issue token", err)
		return
	}
	h.activity.Record(c.Request.Context(), user.ID, action, "", nil)
	respond.JSON(c, status, sessionResponse{Token: token, User: user})
}
