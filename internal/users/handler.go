package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/shared/server/middleware"
	"workspace-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me/preferences", h.updatePreferences)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Internal(c, "failed to load user", err)
		return
	}
	respond.OK(c, user)
}

type preferencesRequest struct {
	FavoriteTopics []string `json:"favoriteTopics" binding:"required,max=50,dive,max=64"`
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "favoriteTopics must be a list of short strings", nil)
		return
	}

	topics, err := h.Svc.SetFavoriteTopics(c.Request.Context(), middleware.UserIDFromContext(c), req.FavoriteTopics)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		default:
			respond.Internal(c, "failed to update preferences", err)
		}
		return
	}
	respond.OK(c, gin.H{"favoriteTopics": topics})
}
