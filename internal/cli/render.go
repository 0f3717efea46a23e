package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hq040506/DL-student-assistant/internal/constants"
	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/internal/services"
	"github.com/hq040506/DL-student-assistant/pkg/nlq"
)

// renderTurn prints one executed turn: the message, the rows as a table and the chart hint.
func renderTurn(w io.Writer, result *services.TurnResult, showSQL bool) {
	if showSQL && result.IsStatement() {
		_, _ = fmt.Fprintf(w, "SQL: %s\n", result.Statement)
	}
	_, _ = fmt.Fprintln(w, result.Message)

	if len(result.Columns) > 0 && len(result.Rows) > 0 {
		renderRows(w, result.Columns, result.Rows, constants.MaxResultRows)
	}
	if result.Chart != nil && result.Chart.Type != services.ChartTable {
		_, _ = fmt.Fprintln(w, describeChart(result.Chart))
	}
}

func renderRows(w io.Writer, cols []string, rows []map[string]interface{}, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, r := range shown {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(r[col])
		}
		t.AppendRow(row)
	}
	if len(shown) < len(rows) {
		t.AppendFooter(table.Row{fmt.Sprintf("… %d more", len(rows)-len(shown))})
	}
	t.Render()
}

// renderPlan prints a plan without running it.
func renderPlan(w io.Writer, plan nlq.Plan) {
	switch p := plan.(type) {
	case *nlq.ChatPlan:
		_, _ = fmt.Fprintf(w, "chat: %s\n", p.Message)
	case *nlq.AskPlan:
		_, _ = fmt.Fprintf(w, "ask: %s\n", p.Message)
		if record := nlq.ToRecord(p.Pending); record != nil {
			_, _ = fmt.Fprintf(w, "pending: %s\n", record.Kind)
			if record.Statement != "" {
				_, _ = fmt.Fprintf(w, "held statement: %s\n", record.Statement)
			}
		}
	case *nlq.SQLPlan:
		_, _ = fmt.Fprintf(w, "%s: %s\n", p.Kind, p.Statement)
		if p.Preamble != "" {
			_, _ = fmt.Fprintln(w, p.Preamble)
		}
	}
}

func describeChart(c *models.ChartSuggestion) string {
	axes := []string{"x=" + c.X}
	if c.Y != "" {
		axes = append(axes, "y="+c.Y)
	}
	if c.Group != "" {
		axes = append(axes, "group="+c.Group)
	}
	return fmt.Sprintf("📈 %s [%s] %s", c.Title, c.Type, strings.Join(axes, " "))
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
