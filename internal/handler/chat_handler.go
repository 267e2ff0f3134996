package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
	"github.com/liftlog/coach/internal/pkg/response"
	"github.com/liftlog/coach/internal/service"
	"github.com/liftlog/coach/internal/session"
)

type ChatHandler struct {
	chat         *service.ChatService
	registry     *session.Registry
	pollInterval time.Duration
}

func NewChatHandler(chat *service.ChatService, registry *session.Registry, pollInterval time.Duration) *ChatHandler {
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return &ChatHandler{chat: chat, registry: registry, pollInterval: pollInterval}
}

type chatRequest struct {
	Prompt  string          `json:"prompt"`
	Context []model.Message `json:"context"`
}

// Chat starts a turn: it resets the user's session, launches orchestration in
// the background and acknowledges immediately. Progress is read separately.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := userIDFromHeader(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "prompt is required")
		return
	}
	sess := h.registry.Start(userID)
	logutil.GetLogger(c.Request.Context()).Info("chat accepted", zap.Int64("user_id", userID))
	go h.chat.Run(context.Background(), userID, req.Prompt, req.Context, sess)
	response.Success(c, gin.H{"user_id": userID, "status": "accepted"})
}

// Progress serves the session's event log as an SSE stream: one data frame
// per event, polling for new ones, closing right after the terminal frame.
// The log is evicted once its terminal event has been delivered.
func (h *ChatHandler) Progress(c *gin.Context) {
	userID, ok := userIDFromHeader(c)
	if !ok {
		return
	}
	if _, _, err := h.registry.Snapshot(userID, 0); appErr.IsNotFound(err) {
		response.Error(c, http.StatusNotFound, "not_found", "no session for this user")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	offset := 0
	for {
		events, terminal, err := h.registry.Snapshot(userID, offset)
		if err != nil {
			// Session replaced or evicted under us; nothing more to stream.
			return
		}
		for _, ev := range events {
			frame, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := c.Writer.WriteString("data: " + string(frame) + "\n\n"); err != nil {
				return
			}
		}
		if len(events) > 0 {
			c.Writer.Flush()
		}
		offset += len(events)
		if terminal {
			h.registry.Clear(userID)
			return
		}
		select {
		case <-c.Request.Context().Done():
			// Client abandoned the stream; the orchestrator finishes on its
			// own and the log stays until a later terminal consumption.
			return
		case <-time.After(h.pollInterval):
		}
	}
}
