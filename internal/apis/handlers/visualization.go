package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/services"
)

// VisualizationHandler handles APIs related to visualizations
type VisualizationHandler struct {
	visualizationService services.VisualizationService
}

// NewVisualizationHandler creates a new visualization handler
func NewVisualizationHandler(visualizationService services.VisualizationService) *VisualizationHandler {
	return &VisualizationHandler{
		visualizationService: visualizationService,
	}
}

// GetOverview returns the student distribution per dimension with a chart for each
func (h *VisualizationHandler) GetOverview(c *gin.Context) {
	overview, statusCode, err := h.visualizationService.Overview(c.Request.Context())
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    overview,
	})
}
