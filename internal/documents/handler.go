package documents

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/extract"
	"workspace-backend/internal/shared/server/middleware"
	"workspace-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/workspaces/:id/documents", h.upload)
	rg.GET("/workspaces/:id/documents", h.list)
	rg.POST("/workspaces/:id/documents/presign", h.presign)
	rg.POST("/workspaces/:id/documents/from-storage", h.fromStorage)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/download", h.download)
	rg.DELETE("/documents/:id", h.delete)
}

// RegisterAIRoutes attaches the summarize route, usually behind a tighter rate limit.
func (h *Handler) RegisterAIRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/summarize", h.summarize)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxFileSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Sprintf("file exceeds %d bytes", MaxFileSize), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), UploadInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Tags:         splitTags(c.PostFormArray("tags")),
		FileName:     fileHeader.Filename,
		DeclaredType: fileHeader.Header.Get("Content-Type"),
		Body:         file,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, toResponse(doc, false))
}

type presignRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"max=255"`
}

type presignResponse struct {
	UploadURL        string              `json:"uploadUrl"`
	Key              string              `json:"key"`
	Headers          map[string][]string `json:"headers,omitempty"`
	ExpiresInSeconds int64               `json:"expiresInSeconds"`
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	up, err := h.Svc.Presign(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), strings.TrimSpace(req.FileName), strings.TrimSpace(req.ContentType))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, presignResponse{
		UploadURL:        up.URL,
		Key:              up.Key,
		Headers:          up.Headers,
		ExpiresInSeconds: int64(up.ExpiresIn.Seconds()),
	})
}

type fromStorageRequest struct {
	Key         string   `json:"key" binding:"required"`
	FileName    string   `json:"fileName" binding:"required,max=255"`
	ContentType string   `json:"contentType" binding:"max=255"`
	Title       string   `json:"title" binding:"max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Tags        []string `json:"tags" binding:"max=20,dive,max=50"`
}

func (h *Handler) fromStorage(c *gin.Context) {
	var req fromStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "key and fileName are required", nil)
		return
	}
	doc, err := h.Svc.RegisterStored(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), strings.TrimSpace(req.Key), UploadInput{
		Title:        req.Title,
		Description:  req.Description,
		Tags:         req.Tags,
		FileName:     strings.TrimSpace(req.FileName),
		DeclaredType: req.ContentType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, toResponse(doc, false))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toResponse(d, false))
	}
	respond.OK(c, gin.H{"documents": out})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(doc, true))
}

func (h *Handler) download(c *gin.Context) {
	doc, rc, err := h.Svc.Download(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName})
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.FileType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) summarize(c *gin.Context) {
	res, err := h.Svc.Summarize(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":  true,
		"summary":  res.Summary,
		"points":   res.Points,
		"keywords": res.Keywords,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "workspace access denied", nil)
	case errors.Is(err, extract.ErrEmptyFile):
		respond.Error(c, http.StatusBadRequest, "FILE_EMPTY", "uploaded file is empty", nil)
	case errors.Is(err, ErrNoContent):
		respond.Error(c, http.StatusBadRequest, "NO_CONTENT", "document has no readable content to summarize", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrSummarizerUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "summarization is not configured", nil)
	case errors.Is(err, ErrPresignUnsupported):
		respond.Error(c, http.StatusNotImplemented, "not_supported", "direct uploads require object storage", nil)
	default:
		respond.Internal(c, "document operation failed", err)
	}
}

// splitTags accepts repeated fields and comma-separated values.
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
