package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// VisualizationService builds the per-dimension distribution of the students table.
type VisualizationService interface {
	Overview(ctx context.Context) (*dtos.OverviewResponse, uint32, error)
}

type visualizationService struct {
	students dbmanager.StudentRepository
}

func NewVisualizationService(students dbmanager.StudentRepository) VisualizationService {
	return &visualizationService{students: students}
}

func (s *visualizationService) Overview(ctx context.Context) (*dtos.OverviewResponse, uint32, error) {
	overview := &dtos.OverviewResponse{
		Dimensions: make([]dtos.DimensionOverview, len(schema.Dimensions)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range schema.Dimensions {
		i, dim := i, dim
		g.Go(func() error {
			groups, err := s.students.CountBy(gctx, dim.Column())
			if err != nil {
				return fmt.Errorf("count by %s: %w", dim.Column(), err)
			}
			overview.Dimensions[i] = dimensionOverview(dim, groups)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("VisualizationService -> Overview -> %v", err)
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to build overview")
	}

	// every student falls in exactly one bucket of a dimension
	if len(overview.Dimensions) > 0 {
		for _, b := range overview.Dimensions[0].Buckets {
			overview.Total += b.Count
		}
	}
	return overview, http.StatusOK, nil
}

func dimensionOverview(dim schema.Dimension, groups []dbmanager.GroupCount) dtos.DimensionOverview {
	column := dim.Column()
	buckets := make([]dtos.DimensionBucket, len(groups))
	for i, g := range groups {
		buckets[i] = dtos.DimensionBucket{Value: g.Value, Count: g.Count}
	}

	// bucket values are labels even for grade, so the chart is always grouped
	var chart *models.ChartSuggestion
	if len(buckets) > 0 {
		chart = &models.ChartSuggestion{
			Type:  ChartGroupedBar,
			X:     "value",
			Y:     "count",
			Title: dim.Label(true) + "分布（分组统计）",
		}
	}

	return dtos.DimensionOverview{
		Dimension: string(dim),
		Column:    column,
		Label:     dim.Label(true),
		Buckets:   buckets,
		Chart:     chart,
	}
}
