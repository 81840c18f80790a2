package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	iss := newIssuer(t)
	token, err := iss.Sign("user-1", "", "")
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID(), Logging(), RequireAuth(iss))
	router.GET("/test", func(c *gin.Context) {
		c.Set("documentId", "doc-1")
		c.Set("cardId", "card-1")
		c.Set("summarizer", "heuristic")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &payload))

	for _, key := range []string{"request_id", "user_id", "document_id", "card_id", "duration_ms", "status", "summarizer"} {
		require.Contains(t, payload, key)
	}
	require.Equal(t, "req-123", payload["request_id"])
	require.Equal(t, "user-1", payload["user_id"])
	require.Equal(t, "doc-1", payload["document_id"])
	require.EqualValues(t, http.StatusOK, payload["status"])
}
