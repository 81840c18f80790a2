package cards

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"workspace-backend/internal/shared/server/middleware"
	"workspace-backend/internal/shared/server/respond"
)

// RegisterValidation installs the "visibility" tag on gin's validator.
func RegisterValidation() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		return Visibility(fl.Field().String()).Valid()
	})
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches read routes to an optionally authenticated group
// and write routes to an authenticated one.
func (h *Handler) RegisterRoutes(public, private *gin.RouterGroup) {
	public.GET("/cards", h.list)
	public.GET("/cards/:id", h.get)

	private.GET("/cards/mine", h.mine)
	private.POST("/cards", h.create)
	private.PUT("/cards/:id", h.update)
	private.DELETE("/cards/:id", h.delete)
	private.POST("/cards/:id/rate", h.rate)
}

type cardRequest struct {
	Title      string     `json:"title" binding:"required,max=200"`
	Content    string     `json:"content" binding:"required,max=20000"`
	Tags       []string   `json:"tags" binding:"max=20,dive,max=50"`
	Category   string     `json:"category" binding:"max=100"`
	Visibility Visibility `json:"visibility" binding:"omitempty,visibility"`
}

func (r cardRequest) input() Input {
	return Input{Title: r.Title, Content: r.Content, Tags: r.Tags, Category: r.Category, Visibility: r.Visibility}
}

type rateRequest struct {
	Value int `json:"value" binding:"required,min=1,max=5"`
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	items, err := h.Svc.ListPublic(c.Request.Context(), middleware.UserIDFromContext(c), Filter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respond.Internal(c, "failed to list cards", err)
		return
	}
	respond.OK(c, gin.H{"cards": items})
}

func (h *Handler) mine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	items, err := h.Svc.ListMine(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Internal(c, "failed to list cards", err)
		return
	}
	respond.OK(c, gin.H{"cards": items})
}

func (h *Handler) get(c *gin.Context) {
	card, err := h.Svc.View(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, card)
}

func (h *Handler) create(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title, content and a valid visibility are required", nil)
		return
	}
	card, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, card)
}

func (h *Handler) update(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title, content and a valid visibility are required", nil)
		return
	}
	card, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, card)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "value must be between 1 and 5", nil)
		return
	}
	rating, err := h.Svc.Rate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"rating": rating})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "card not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "card access denied", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Internal(c, "card operation failed", err)
	}
}
