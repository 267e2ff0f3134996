package handler

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/liftlog/coach/internal/middleware"
	"github.com/liftlog/coach/internal/pkg/response"
)

type RouterDeps struct {
	Chat          *ChatHandler
	CORSAllowlist []string
	ChatWindow    time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(deps.CORSAllowlist))

	r.GET("/", liveness)
	// gzip stays off /progress: compressed SSE defeats flushing.
	r.POST("/chat", gzip.Gzip(gzip.DefaultCompression), middleware.RateLimit(deps.ChatWindow), deps.Chat.Chat)
	r.GET("/progress", deps.Chat.Progress)
	return r
}

func liveness(c *gin.Context) {
	response.Success(c, gin.H{"message": "AI service is running"})
}
