package cards

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(svc *Service, userID, method, path string, body any) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidation(); err != nil {
		panic(err)
	}
	r := gin.New()
	identity := func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	}
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1", identity), r.Group("/api/v1", identity))

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerCreateValidatesVisibility(t *testing.T) {
	svc, _ := newTestService()

	w := serve(svc, "alice", http.MethodPost, "/api/v1/cards", gin.H{"title": "t", "content": "c", "visibility": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(svc, "alice", http.MethodPost, "/api/v1/cards", gin.H{"title": "t", "content": "c", "visibility": "private"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var card Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))

	w = serve(svc, "", http.MethodGet, "/api/v1/cards/"+card.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(svc, "alice", http.MethodGet, "/api/v1/cards/"+card.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(svc, "alice", http.MethodGet, "/api/v1/cards/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), card.ID)
}

func TestHandlerRateAndMissing(t *testing.T) {
	svc, _ := newTestService()
	w := serve(svc, "alice", http.MethodPost, "/api/v1/cards", gin.H{"title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, w.Code)
	var card Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))

	w = serve(svc, "bob", http.MethodPost, "/api/v1/cards/"+card.ID+"/rate", gin.H{"value": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(svc, "bob", http.MethodPost, "/api/v1/cards/"+card.ID+"/rate", gin.H{"value": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rating":{"average":4,"count":1}}`, w.Body.String())

	w = serve(svc, "bob", http.MethodDelete, "/api/v1/cards/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
