package handler

import (
	"net/http"

	"maternalrisk/internal/model"
	"maternalrisk/internal/service"

	"github.com/gin-gonic/gin"
)

// VoiceHandler relays speech-recognition events from the browser
type VoiceHandler struct {
	intake *service.IntakeService
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(intake *service.IntakeService) *VoiceHandler {
	return &VoiceHandler{intake: intake}
}

// Start handles POST /api/v1/sessions/:id/voice/start
func (h *VoiceHandler) Start(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.VoiceStartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	id, lang, err := controller.Voice.Start(req.Lang)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.VoiceStartResponse{
		RecognitionID: id,
		Lang:          lang,
		State:         controller.Voice.State(),
	})
}

// Stop handles POST /api/v1/sessions/:id/voice/stop
func (h *VoiceHandler) Stop(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	controller.Voice.Stop()
	c.JSON(http.StatusOK, gin.H{"voice_state": controller.Voice.State()})
}

// Result handles POST /api/v1/sessions/:id/voice/result
func (h *VoiceHandler) Result(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	outcome := controller.Voice.HandleTranscript(c.Request.Context(), req.RecognitionID, req.Transcript)
	c.JSON(http.StatusOK, gin.H{
		"outcome": outcome,
		"session": controller.Snapshot(),
	})
}

// Error handles POST /api/v1/sessions/:id/voice/error
func (h *VoiceHandler) Error(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.VoiceErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp := gin.H{}
	if recErr := controller.Voice.HandleError(req.RecognitionID, req.Error); recErr != nil {
		resp["error"] = recErr.Error()
	}
	resp["voice_state"] = controller.Voice.State()
	c.JSON(http.StatusOK, resp)
}

// End handles POST /api/v1/sessions/:id/voice/end
func (h *VoiceHandler) End(c *gin.Context) {
	controller, err := h.intake.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.VoiceErrorRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	controller.Voice.HandleEnd(req.RecognitionID)
	c.JSON(http.StatusOK, gin.H{"voice_state": controller.Voice.State()})
}
