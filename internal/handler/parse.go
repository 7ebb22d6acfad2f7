package handler

import (
	"net/http"

	"maternalrisk/internal/model"
	"maternalrisk/internal/service"
	"maternalrisk/internal/utils"

	"github.com/gin-gonic/gin"
)

// ParseHandler serves the voice-parse collaborator contract
type ParseHandler struct {
	parser service.FieldParser
}

// NewParseHandler creates a new parse handler
func NewParseHandler(parser service.FieldParser) *ParseHandler {
	return &ParseHandler{parser: parser}
}

// ParseText handles POST /parse-text
func (h *ParseHandler) ParseText(c *gin.Context) {
	var req model.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	fields, err := h.parser.ParseFields(c.Request.Context(), utils.NormalizeWhitespace(req.Text))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.ParseTextResponse{ParsedFields: fields})
}

// Stat handles GET /stat
func (h *ParseHandler) Stat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "running"})
}
