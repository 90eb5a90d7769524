package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/stockflow/internal/engine"
	"github.com/vk/stockflow/internal/runner"
)

// writeResults prints one markdown section per scenario, in batch order:
// status, then the head and tail of the time series for successes, or the
// diagnostic for failures.
func (a *App) writeResults(results []runner.Result, tableRows int) {
	for _, res := range results {
		fmt.Fprintf(a.outW, "## Scenario: %s (%s)\n\n", res.Label, res.Status)
		if res.Status == runner.StatusFailure {
			fmt.Fprintf(a.outW, "Error: %v\n\n", res.Err)
			continue
		}
		fmt.Fprint(a.outW, renderSeries(res.Series, tableRows))
		fmt.Fprintln(a.outW)
	}
}

// renderSeries formats a time series as a markdown table, showing at most
// headTail rows from each end with an ellipsis row between.
func renderSeries(series *engine.Result, headTail int) string {
	var b strings.Builder

	b.WriteString("| " + strings.Join(series.Columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(series.Columns)) + "\n")

	writeRow := func(row []float64) {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strconv.FormatFloat(v, 'g', 6, 64)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if len(series.Rows) <= 2*headTail {
		for _, row := range series.Rows {
			writeRow(row)
		}
		return b.String()
	}

	for _, row := range series.Rows[:headTail] {
		writeRow(row)
	}
	b.WriteString("|" + strings.Repeat(" ... |", len(series.Columns)) + "\n")
	for _, row := range series.Rows[len(series.Rows)-headTail:] {
		writeRow(row)
	}
	return b.String()
}
