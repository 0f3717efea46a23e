package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/hq040506/DL-student-assistant/internal/apis/middlewares"
	"github.com/hq040506/DL-student-assistant/internal/di"
)

// SetupVisualizationRoutes configures routes for visualization APIs
func SetupVisualizationRoutes(router *gin.Engine) {
	visualizationHandler, err := di.GetVisualizationHandler()
	if err != nil {
		log.Fatalf("Failed to get visualization handler: %v", err)
	}

	// Visualization API routes - all protected by authentication
	visualizationGroup := router.Group("/api/visualizations")
	visualizationGroup.Use(middlewares.AuthMiddleware())

	visualizationGroup.GET("/overview", visualizationHandler.GetOverview)
}
