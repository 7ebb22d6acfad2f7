package handler

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the intake API, the parse collaborator and the chat relay on router
func RegisterRoutes(router gin.IRouter, intake *IntakeHandler, voice *VoiceHandler, result *ResultHandler, parse *ParseHandler, chat *ChatHandler) {
	router.POST("/parse-text", parse.ParseText)
	router.GET("/stat", parse.Stat)
	router.POST("/rag/ask", chat.Ask)

	apiV1 := router.Group("/api/v1")
	{
		// Intake view
		apiV1.POST("/sessions", intake.Open)
		apiV1.GET("/sessions/:id", intake.Get)
		apiV1.DELETE("/sessions/:id", intake.Close)
		apiV1.PUT("/sessions/:id/fields/:field", intake.SetField)
		apiV1.PATCH("/sessions/:id/fields", intake.MergeFields)
		apiV1.POST("/sessions/:id/submit", intake.Submit)

		// Speech events
		apiV1.POST("/sessions/:id/voice/start", voice.Start)
		apiV1.POST("/sessions/:id/voice/stop", voice.Stop)
		apiV1.POST("/sessions/:id/voice/result", voice.Result)
		apiV1.POST("/sessions/:id/voice/error", voice.Error)
		apiV1.POST("/sessions/:id/voice/end", voice.End)

		// Result view
		apiV1.GET("/sessions/:id/result", result.Show)
	}
}
