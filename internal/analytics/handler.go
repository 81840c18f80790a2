package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/shared/server/middleware"
	"workspace-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analytics routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics/summary", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "days must be an integer", nil)
			return
		}
		days = parsed
	}

	sum, err := h.Svc.Summarize(c.Request.Context(), middleware.UserIDFromContext(c), days)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "days must be between 1 and 365", nil)
			return
		}
		respond.Internal(c, "failed to load analytics", err)
		return
	}
	respond.OK(c, sum)
}
