package handler

import (
	"errors"
	"net/http"
	"strings"

	"maternalrisk/internal/model"
	"maternalrisk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler relays operator questions to the chat service
type ChatHandler struct {
	client *service.RagClient
	logger *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(client *service.RagClient, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{client: client, logger: logger}
}

// Ask handles POST /rag/ask
func (h *ChatHandler) Ask(c *gin.Context) {
	var req model.RagAskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer, err := h.client.Ask(c.Request.Context(), question)
	if err != nil {
		h.logger.Warn("Chat request failed", zap.Error(err))
		if errors.Is(err, service.ErrTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", answer)
}
