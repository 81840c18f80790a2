package interactions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/cards"
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

// RegisterRoutes attaches interaction routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cards/:id/like", h.add(TypeLike))
	rg.DELETE("/cards/:id/like", h.remove(TypeLike))
	rg.POST("/cards/:id/bookmark", h.add(TypeBookmark))
	rg.DELETE("/cards/:id/bookmark", h.remove(TypeBookmark))
	rg.GET("/cards/:id/interactions", h.status)
	rg.GET("/me/bookmarks", h.bookmarks)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{ID: middleware.UserIDFromContext(c), Name: middleware.UserNameFromContext(c)}
}

func (h *Handler) add(typ Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.Svc.Add(c.Request.Context(), actorFrom(c), c.Param("id"), typ); err != nil {
			h.fail(c, err)
			return
		}
		respond.Created(c, gin.H{"success": true})
	}
}

func (h *Handler) remove(typ Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.Svc.Remove(c.Request.Context(), actorFrom(c), c.Param("id"), typ); err != nil {
			h.fail(c, err)
			return
		}
		respond.OK(c, gin.H{"success": true})
	}
}

func (h *Handler) status(c *gin.Context) {
	st, err := h.Svc.Status(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) bookmarks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Svc.Bookmarks(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		respond.Internal(c, "failed to list bookmarks", err)
		return
	}
	respond.OK(c, gin.H{"cards": items})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyLiked):
		respond.Error(c, http.StatusConflict, "ALREADY_LIKED", "card already liked", nil)
	case errors.Is(err, ErrAlreadyBookmarked):
		respond.Error(c, http.StatusConflict, "ALREADY_BOOKMARKED", "card already bookmarked", nil)
	case errors.Is(err, ErrNotLiked):
		respond.Error(c, http.StatusNotFound, "NOT_LIKED", "card not liked", nil)
	case errors.Is(err, ErrNotBookmarked):
		respond.Error(c, http.StatusNotFound, "NOT_BOOKMARKED", "card not bookmarked", nil)
	case errors.Is(err, cards.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "card not found", nil)
	case errors.Is(err, cards.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "card access denied", nil)
	default:
		respond.Internal(c, "interaction failed", err)
	}
}
