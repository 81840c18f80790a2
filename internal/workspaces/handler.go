package workspaces

import (
	"errors"
	"net/http"

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

// RegisterRoutes attaches workspace routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/workspaces", h.create)
	rg.GET("/workspaces", h.list)
	rg.GET("/workspaces/:id", h.get)
	rg.POST("/workspaces/:id/members", h.addMember)
	rg.DELETE("/workspaces/:id", h.delete)
}

type createRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

type memberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   Role   `json:"role" binding:"required,oneof=editor viewer"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}
	ws, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, ws)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Internal(c, "failed to list workspaces", err)
		return
	}
	respond.OK(c, gin.H{"workspaces": items})
}

func (h *Handler) get(c *gin.Context) {
	ws, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, ws)
}

func (h *Handler) addMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "userId and a role of editor or viewer are required", nil)
		return
	}
	m, err := h.Svc.AddMember(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.UserID, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, m)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "workspace not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "workspace access denied", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Internal(c, "workspace operation failed", err)
	}
}
