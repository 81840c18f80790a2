package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	h := NewHandler(svc)
	h.RegisterRoutes(g)
	h.RegisterAIRoutes(g)
	return r
}

func multipartUpload(t *testing.T, path, fileName string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerUploadEmptyFile(t *testing.T) {
	e := newEnv(t)
	r := newRouter(e.svc, "editor")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "/api/v1/workspaces/"+e.wsID+"/documents", "empty.txt", nil, nil))

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "FILE_EMPTY")
}

func TestHandlerUploadMissingFile(t *testing.T) {
	e := newEnv(t)
	r := newRouter(e.svc, "editor")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/"+e.wsID+"/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestHandlerUploadGetAndSummarize(t *testing.T) {
	e := newEnv(t)
	r := newRouter(e.svc, "editor")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "/api/v1/workspaces/"+e.wsID+"/documents", "notes.txt", []byte(articleText),
		map[string]string{"title": "Failure notes", "tags": "Systems, ops"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Failure notes", created.Title)
	assert.Equal(t, []string{"systems", "ops"}, created.Tags)
	assert.True(t, created.HasExtractedText)
	assert.Empty(t, created.ExtractedText)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var fetched DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, articleText, fetched.ExtractedText)
	assert.EqualValues(t, 1, fetched.ViewCount)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+created.ID+"/summarize", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Success  bool     `json:"success"`
		Summary  string   `json:"summary"`
		Points   []string `json:"points"`
		Keywords []string `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Summary)
	assert.NotEmpty(t, body.Points)
	assert.NotEmpty(t, body.Keywords)
}

func TestHandlerSummarizeErrors(t *testing.T) {
	e := newEnv(t)
	doc := e.upload(t, "editor", "a.pdf", "%PDF-1.4\nbroken", "")

	w := httptest.NewRecorder()
	newRouter(e.svc, "editor").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/summarize", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NO_CONTENT")

	w = httptest.NewRecorder()
	newRouter(e.svc, "stranger").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/summarize", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	newRouter(e.svc, "editor").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/missing/summarize", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	e.svc.Summarizer = nil
	w = httptest.NewRecorder()
	newRouter(e.svc, "editor").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/summarize", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandlerDownload(t *testing.T) {
	e := newEnv(t)
	doc := e.upload(t, "editor", "notes.txt", articleText, "")

	w := httptest.NewRecorder()
	newRouter(e.svc, "viewer").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+doc.ID+"/download", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, articleText, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notes.txt")
}

func TestHandlerPresignNotSupported(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/"+e.wsID+"/documents/presign",
		bytes.NewBufferString(`{"fileName":"a.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newRouter(e.svc, "editor").ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitTags([]string{"a, b", " c ", ""}))
	assert.Nil(t, splitTags(nil))
}
