package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/liftlog/coach/internal/pkg/response"
)

// userIDFromHeader reads the required user-id header. On failure it writes
// the 400 response and reports false.
func userIDFromHeader(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader("user-id"))
	if raw == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "user-id header is required")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "user-id header must be numeric")
		return 0, false
	}
	return userID, true
}
