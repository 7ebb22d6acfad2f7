package handler

import (
	"net/http"

	"maternalrisk/internal/model"
	"maternalrisk/internal/service"

	"github.com/gin-gonic/gin"
)

// IntakeHandler handles intake-view HTTP requests
type IntakeHandler struct {
	intake     *service.IntakeService
	resultPath string
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(intake *service.IntakeService, resultPath string) *IntakeHandler {
	return &IntakeHandler{
		intake:     intake,
		resultPath: resultPath,
	}
}

// Open handles POST /api/v1/sessions
func (h *IntakeHandler) Open(c *gin.Context) {
	var req model.OpenSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	controller := h.intake.Open(req.SpeechSupported)
	c.JSON(http.StatusCreated, controller.Snapshot())
}

// Get handles GET /api/v1/sessions/:id
func (h *IntakeHandler) Get(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.Snapshot())
}

// SetField handles PUT /api/v1/sessions/:id/fields/:field
func (h *IntakeHandler) SetField(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if _, err := controller.Fields.SetField(c.Param("field"), req.Value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.Snapshot())
}

// MergeFields handles PATCH /api/v1/sessions/:id/fields
func (h *IntakeHandler) MergeFields(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result := controller.Fields.MergeFields(partial)
	c.JSON(http.StatusOK, gin.H{
		"merge":   result,
		"session": controller.Snapshot(),
	})
}

// Submit handles POST /api/v1/sessions/:id/submit
func (h *IntakeHandler) Submit(c *gin.Context) {
	raw, err := h.intake.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SubmitResponse{
		Next:       h.resultPath,
		Prediction: raw,
	})
}

// Close handles DELETE /api/v1/sessions/:id
func (h *IntakeHandler) Close(c *gin.Context) {
	if err := h.intake.Close(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
