package handler

import (
	"errors"
	"net/http"

	"maternalrisk/internal/service"

	"github.com/gin-gonic/gin"
)

// ResultHandler renders the result view
type ResultHandler struct {
	intake     *service.IntakeService
	intakePath string
}

// NewResultHandler creates a new result handler
func NewResultHandler(intake *service.IntakeService, intakePath string) *ResultHandler {
	return &ResultHandler{
		intake:     intake,
		intakePath: intakePath,
	}
}

// Show handles GET /api/v1/sessions/:id/result. Without a prior submission
// the operator is sent back to the intake view.
func (h *ResultHandler) Show(c *gin.Context) {
	result, err := h.intake.Result(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrMissingSessionState) {
		c.Redirect(http.StatusSeeOther, h.intakePath)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
