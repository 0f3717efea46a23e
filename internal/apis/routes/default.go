package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
)

func SetupDefaultRoutes(router *gin.Engine) {
	// Health check route
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, dtos.Response{
			Success: true,
			Data:    "Student assistant is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	SetupAuthRoutes(router)
	SetupChatRoutes(router)
	SetupStudentRoutes(router)
	SetupVisualizationRoutes(router)
}
