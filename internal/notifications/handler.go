package notifications

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

// RegisterRoutes attaches notification routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.GET("/notifications/unread-count", h.unreadCount)
	rg.PATCH("/notifications/:id/read", h.markRead)
	rg.POST("/notifications/read-all", h.markAllRead)
	rg.DELETE("/notifications/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), unreadOnly, limit)
	if err != nil {
		respond.Internal(c, "failed to list notifications", err)
		return
	}
	respond.OK(c, gin.H{"notifications": items})
}

func (h *Handler) unreadCount(c *gin.Context) {
	n, err := h.Svc.UnreadCount(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Internal(c, "failed to count notifications", err)
		return
	}
	respond.OK(c, gin.H{"count": n})
}

func (h *Handler) markRead(c *gin.Context) {
	err := h.Svc.MarkRead(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.Svc.MarkAllRead(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Internal(c, "failed to update notifications", err)
		return
	}
	respond.OK(c, gin.H{"success": true, "updated": n})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
		return
	}
	respond.Internal(c, "failed to update notification", err)
}
