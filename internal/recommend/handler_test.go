package recommend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/cards"
	"workspace-backend/internal/suggest"
)

func newRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	private := api.Group("", func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	h := NewHandler(svc)
	h.RegisterRoutes(api, private)
	h.RegisterAIRoutes(private)
	return r
}

func TestHandlerTrending(t *testing.T) {
	f := newFixture(t)
	f.card(t, cards.Card{ID: "A"})
	f.log(t, "u1", analytics.ActionView, "A", time.Hour, 2)

	w := httptest.NewRecorder()
	newRouter(f.svc, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/trending?days=3&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Days  int            `json:"days"`
		Items []TrendingItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Days)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "A", body.Items[0].Card.ID)
	assert.EqualValues(t, 2, body.Items[0].InteractionCount)
}

func TestHandlerPersonalized(t *testing.T) {
	f := newFixture(t)
	f.card(t, cards.Card{ID: "A", ViewCount: 3})

	w := httptest.NewRecorder()
	newRouter(f.svc, "u1").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/personalized", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"A"`)
}

func TestHandlerSuggest(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f.svc, "u1")

	body, _ := json.Marshal(gin.H{
		"title":   "Postgres indexing",
		"content": "Postgres query planner picks indexing strategies. Postgres indexing matters.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/suggest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res suggest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Database", res.Category)
	assert.NotEmpty(t, res.Tags)
	assert.LessOrEqual(t, len(res.Tags), suggest.MaxTags)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/suggest", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
