package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat", RateLimit(window), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doChat(r *gin.Engine, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	if userID != "" {
		req.Header.Set("user-id", userID)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksSecondRequest(t *testing.T) {
	r := newLimitedRouter(time.Minute)
	require.Equal(t, http.StatusOK, doChat(r, "7").Code)
	require.Equal(t, http.StatusTooManyRequests, doChat(r, "7").Code)
}

func TestRateLimitKeyedByUser(t *testing.T) {
	r := newLimitedRouter(time.Minute)
	require.Equal(t, http.StatusOK, doChat(r, "7").Code)
	require.Equal(t, http.StatusOK, doChat(r, "8").Code)
}

func TestRateLimitWindowExpires(t *testing.T) {
	r := newLimitedRouter(10 * time.Millisecond)
	require.Equal(t, http.StatusOK, doChat(r, "7").Code)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, http.StatusOK, doChat(r, "7").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	r := newLimitedRouter(0)
	require.Equal(t, http.StatusOK, doChat(r, "7").Code)
	require.Equal(t, http.StatusOK, doChat(r, "7").Code)
}
