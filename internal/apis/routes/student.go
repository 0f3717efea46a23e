package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/hq040506/DL-student-assistant/internal/apis/middlewares"
	"github.com/hq040506/DL-student-assistant/internal/di"
)

func SetupStudentRoutes(router *gin.Engine) {
	studentHandler, err := di.GetStudentHandler()
	if err != nil {
		log.Fatalf("Failed to get student handler: %v", err)
	}

	protected := router.Group("/api/students")
	protected.Use(middlewares.AuthMiddleware())
	{
		protected.GET("", studentHandler.List)
		protected.GET("/:name", studentHandler.GetByName)
	}
}
