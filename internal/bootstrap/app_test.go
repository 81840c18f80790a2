package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/bootstrap"
	"workspace-backend/internal/shared/config"
)

const notes = `Every service must define its failure budget. Retries should be bounded and idempotent.
The main risk in distributed systems is partial failure across network boundaries.`

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c client) upload(path, fileName string, content []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(c.t, err)
	_, err = part.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.WriteField("description", "Reliability notes for the platform team."))
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
		TaskWorkers:     2,
		TaskQueueSize:   64,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Close(ctx)
	})
	return app
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func register(t *testing.T, router *gin.Engine, email, name string) (client, string) {
	t.Helper()
	anon := client{t: t, router: router}
	w := anon.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": email, "password": "correct-horse", "name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s := decode[session](t, w)
	return client{t: t, router: router, token: s.Token}, s.User.ID
}

func TestHealthAndMetrics(t *testing.T) {
	app := newApp(t)
	anon := client{t: t, router: app.Router}

	w := anon.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = anon.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "summarize_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newApp(t)
	anon := client{t: t, router: app.Router}

	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/v1/workspaces", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/api/v1/documents/x/summarize", nil).Code)

	bad := client{t: t, router: app.Router, token: "not-a-jwt"}
	assert.Equal(t, http.StatusUnauthorized, bad.do(http.MethodGet, "/api/v1/me", nil).Code)

	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/api/v1/cards", nil).Code)
}

func TestWorkspaceDocumentFlow(t *testing.T) {
	app := newApp(t)
	owner, _ := register(t, app.Router, "owner@example.com", "Owner")
	viewer, viewerID := register(t, app.Router, "viewer@example.com", "Viewer")
	_, strangerID := register(t, app.Router, "stranger@example.com", "Stranger")
	stranger := client{t: t, router: app.Router}
	{
		w := stranger.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "stranger@example.com", "password": "correct-horse"})
		require.Equal(t, http.StatusOK, w.Code)
		stranger.token = decode[session](t, w).Token
	}
	require.NotEmpty(t, strangerID)

	w := owner.do(http.MethodPost, "/api/v1/workspaces", gin.H{"name": "Platform"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ws := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = owner.do(http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/members", gin.H{"userId": viewerID, "role": "viewer"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = owner.upload("/api/v1/workspaces/"+ws.ID+"/documents", "empty.txt", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_EMPTY")

	w = viewer.upload("/api/v1/workspaces/"+ws.ID+"/documents", "notes.txt", []byte(notes))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = owner.upload("/api/v1/workspaces/"+ws.ID+"/documents", "notes.txt", []byte(notes))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = stranger.do(http.MethodPost, "/api/v1/documents/"+doc.ID+"/summarize", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = viewer.do(http.MethodPost, "/api/v1/documents/missing/summarize", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = viewer.do(http.MethodPost, "/api/v1/documents/"+doc.ID+"/summarize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[struct {
		Success  bool     `json:"success"`
		Summary  string   `json:"summary"`
		Points   []string `json:"points"`
		Keywords []string `json:"keywords"`
	}](t, w)
	assert.True(t, summary.Success)
	assert.NotEmpty(t, summary.Summary)
	assert.NotEmpty(t, summary.Points)
	assert.NotEmpty(t, summary.Keywords)

	w = viewer.do(http.MethodGet, "/api/v1/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summary":{`)

	w = owner.do(http.MethodDelete, "/api/v1/workspaces/"+ws.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = owner.do(http.MethodGet, "/api/v1/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCardInteractionFlow(t *testing.T) {
	app := newApp(t)
	author, _ := register(t, app.Router, "author@example.com", "Ada")
	reader, _ := register(t, app.Router, "reader@example.com", "Grace")

	w := author.do(http.MethodPost, "/api/v1/cards", gin.H{
		"title":   "Postgres indexing",
		"content": "How the postgres planner picks an index for a query.",
		"tags":    []string{"Postgres", "SQL"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	card := decode[struct {
		ID       string   `json:"id"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}](t, w)
	assert.Equal(t, "Database", card.Category)
	assert.Equal(t, []string{"postgres", "sql"}, card.Tags)

	w = author.do(http.MethodPost, "/api/v1/cards", gin.H{"title": "x", "content": "y", "visibility": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = reader.do(http.MethodPost, "/api/v1/cards/"+card.ID+"/like", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = reader.do(http.MethodPost, "/api/v1/cards/"+card.ID+"/like", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_LIKED")

	w = reader.do(http.MethodDelete, "/api/v1/cards/"+card.ID+"/bookmark", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_BOOKMARKED")

	w = reader.do(http.MethodGet, "/api/v1/cards/"+card.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"likeCount":1`)

	require.Eventually(t, func() bool {
		w := author.do(http.MethodGet, "/api/v1/notifications/unread-count", nil)
		return w.Code == http.StatusOK && bytes.Contains(w.Body.Bytes(), []byte(`"count":1`))
	}, 2*time.Second, 10*time.Millisecond)

	w = author.do(http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Grace liked your card")

	require.Eventually(t, func() bool {
		w := reader.do(http.MethodGet, "/api/v1/recommendations/trending?days=7&limit=5", nil)
		return w.Code == http.StatusOK && bytes.Contains(w.Body.Bytes(), []byte(card.ID))
	}, 2*time.Second, 10*time.Millisecond)

	w = reader.do(http.MethodPost, "/api/v1/recommendations/suggest", gin.H{"title": "React hooks", "content": "Frontend state with react and javascript."})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"suggested_category":"Web Development"`)
}

func TestPersonalizedForDeletedAccount(t *testing.T) {
	app := newApp(t)
	token, err := app.Tokens.Sign("ghost", "ghost@example.com", "Ghost")
	require.NoError(t, err)
	ghost := client{t: t, router: app.Router, token: token}

	w := ghost.do(http.MethodGet, "/api/v1/recommendations/personalized", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"cards"`)
}

func TestAnonymousRecommendationRoutes(t *testing.T) {
	app := newApp(t)
	anon := client{t: t, router: app.Router}

	w := anon.do(http.MethodPost, "/api/v1/recommendations/suggest", gin.H{"title": "Postgres indexes", "content": "How the query planner uses an index."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"suggested_category":"Database"`)

	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/api/v1/recommendations/trending", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/v1/recommendations/personalized", nil).Code)
}
