package services

import (
	"strconv"
	"strings"

	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

const (
	ChartHistogram  = "histogram"
	ChartBar        = "bar"
	ChartGroupedBar = "grouped_bar"
	ChartScatter    = "scatter"
	ChartLine       = "line"
	ChartTable      = "table"
)

const DefaultChartTitle = "统计分析结果"

// SuggestChart picks a chart for a result set from the shape of its columns.
// It returns nil for an empty result.
func SuggestChart(columns []string, rows []map[string]interface{}, title string) *models.ChartSuggestion {
	if len(columns) == 0 || len(rows) == 0 {
		return nil
	}
	if title == "" {
		title = DefaultChartTitle
	}

	switch len(columns) {
	case 1:
		col := columns[0]
		if isNumericColumn(col, rows) {
			return &models.ChartSuggestion{Type: ChartHistogram, X: col, Title: title + "（数值分布）"}
		}
		return &models.ChartSuggestion{Type: ChartBar, X: col, Title: title + "（类别分布）"}
	case 2:
		x, y := columns[0], columns[1]
		xNumeric, yNumeric := isNumericColumn(x, rows), isNumericColumn(y, rows)
		switch {
		case !xNumeric && yNumeric:
			return &models.ChartSuggestion{Type: ChartGroupedBar, X: x, Y: y, Title: title + "（分组统计）"}
		case xNumeric && yNumeric:
			return &models.ChartSuggestion{Type: ChartScatter, X: x, Y: y, Title: title + "（相关性分析）"}
		default:
			return &models.ChartSuggestion{Type: ChartBar, X: x, Title: title + "（主键分布）"}
		}
	}

	var numeric []string
	for _, col := range columns {
		if isNumericColumn(col, rows) {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) >= 2 {
		return &models.ChartSuggestion{
			Type:  ChartLine,
			Y:     strings.Join(numeric, ","),
			Title: title + "（多指标趋势分析）",
		}
	}
	return &models.ChartSuggestion{Type: ChartTable, Title: title}
}

// isNumericColumn uses the declared type for students columns and the values otherwise.
// MySQL hands aggregates back as text, so numeric strings count as numbers.
func isNumericColumn(column string, rows []map[string]interface{}) bool {
	if c, ok := schema.ColumnByName(column); ok {
		return c.Type == schema.ColumnInteger
	}

	seen := false
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		if !isNumber(v) {
			return false
		}
		seen = true
	}
	return seen
}

func isNumber(v interface{}) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return err == nil
	}
	return false
}
