package dtos

import (
	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
)

type StudentListRequest struct {
	College   string `form:"college"`
	Major     string `form:"major"`
	ClassName string `form:"class_name"`
	Grade     int    `form:"grade" binding:"omitempty,min=1900,max=2100"`
	Gender    string `form:"gender"`
	PageRequest
}

type StudentListResponse struct {
	Students []dbmanager.Student `json:"students"`
	Total    int64               `json:"total"`
}

type StudentDetailResponse struct {
	Name    string                   `json:"name"`
	Records []map[string]interface{} `json:"records"`
}

type DimensionBucket struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type DimensionOverview struct {
	Dimension string                  `json:"dimension"`
	Column    string                  `json:"column"`
	Label     string                  `json:"label"`
	Buckets   []DimensionBucket       `json:"buckets"`
	Chart     *models.ChartSuggestion `json:"chart,omitempty"`
}

type OverviewResponse struct {
	Total      int64               `json:"total"`
	Dimensions []DimensionOverview `json:"dimensions"`
}
