package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/hq040506/DL-student-assistant/internal/apis/middlewares"
	"github.com/hq040506/DL-student-assistant/internal/di"
)

func SetupChatRoutes(router *gin.Engine) {
	chatHandler, err := di.GetChatHandler()
	if err != nil {
		log.Fatalf("Failed to get chat handler: %v", err)
	}

	protected := router.Group("/api/chats")
	protected.Use(middlewares.AuthMiddleware())
	{
		// Chat CRUD
		protected.POST("", chatHandler.Create)
		protected.GET("", chatHandler.List)
		protected.GET("/:id", chatHandler.GetByID)
		protected.PUT("/:id", chatHandler.Update)
		protected.DELETE("/:id", chatHandler.Delete)

		// Messages within a chat
		protected.GET("/:id/messages", chatHandler.ListMessages)
		protected.POST("/:id/messages", chatHandler.CreateMessage)
		protected.DELETE("/:id/messages", chatHandler.DeleteMessages)
	}
}
