package recommend

import (
	"net/http"
	"strconv"
	"strings"

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

// RegisterRoutes attaches trending to the public group and personalized to
// the authenticated one.
func (h *Handler) RegisterRoutes(public, private *gin.RouterGroup) {
	public.GET("/recommendations/trending", h.trending)
	private.GET("/recommendations/personalized", h.personalized)
}

// RegisterAIRoutes attaches the suggestion route. It needs no identity, so anonymous
// callers are limited per client IP by the AI rate-limit group.
func (h *Handler) RegisterAIRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations/suggest", h.suggest)
}

func (h *Handler) trending(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Svc.Trending(c.Request.Context(), days, limit)
	if err != nil {
		respond.Internal(c, "failed to load trending cards", err)
		return
	}
	respond.OK(c, gin.H{"items": items, "days": clampDays(days)})
}

func (h *Handler) personalized(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Svc.Personalized(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		respond.Internal(c, "failed to load recommendations", err)
		return
	}
	respond.OK(c, gin.H{"cards": items})
}

type suggestRequest struct {
	Title   string   `json:"title" binding:"max=200"`
	Content string   `json:"content" binding:"max=50000"`
	Tags    []string `json:"tags" binding:"max=20,dive,max=50"`
}

func (h *Handler) suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title or content is required", nil)
		return
	}
	respond.OK(c, h.Svc.Suggest(req.Title, req.Content, req.Tags))
}
