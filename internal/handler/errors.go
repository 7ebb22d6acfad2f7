package handler

import (
	"errors"
	"net/http"

	"maternalrisk/internal/service"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to HTTP responses
func writeError(c *gin.Context, err error) {
	var classifierErr *service.ClassifierError
	var incompleteErr *service.IncompleteRecordError

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &incompleteErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Assessment incomplete",
			"missing": incompleteErr.Missing,
		})
	case errors.Is(err, service.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Prediction service timed out, please resubmit"})
	case errors.As(err, &classifierErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Prediction failed, please resubmit",
			"detail": classifierErr.Detail,
		})
	case errors.Is(err, service.ErrUnrecognizedLabel), errors.Is(err, service.ErrMalformedPrediction):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCapabilityUnavailable):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Speech recognition is not supported in this browser."})
	case errors.Is(err, service.ErrAlreadyListening):
		c.JSON(http.StatusConflict, gin.H{"error": "Speech input is already active"})
	case errors.Is(err, service.ErrRecognition):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error: " + err.Error()})
	}
}
