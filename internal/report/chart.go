// Package report renders visual summaries of analysis results.
package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"estatewise/server/internal/models"
)

// Renderer produces report artifacts for a negotiation package.
type Renderer interface {
	RenderStrategyChart(pkg *models.NegotiationPackage) ([]byte, error)
}

const maxLabelLength = 18

// ChartRenderer draws PNG charts with go-chart.
type ChartRenderer struct {
	Width  int
	Height int
}

func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{Width: 900, Height: 420}
}

// RenderStrategyChart renders one bar per ranked strategy, in rank order.
// The recommended strategy is highlighted.
func (r *ChartRenderer) RenderStrategyChart(pkg *models.NegotiationPackage) ([]byte, error) {
	if pkg == nil || len(pkg.Strategies) == 0 {
		return nil, models.InsufficientDataError("no strategies to chart")
	}

	bars := make([]chart.Value, len(pkg.Strategies))
	top := 100.0
	for i, s := range pkg.Strategies {
		color := drawing.ColorFromHex("9ca3af") // gray-400
		if i == 0 {
			color = drawing.ColorFromHex("2563eb") // blue-600
		}
		bars[i] = chart.Value{
			Label: shortLabel(s.Name),
			Value: s.Score,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
		top = math.Max(top, s.Score)
	}

	barWidth := r.Width / (len(bars) * 2)
	if barWidth < 10 {
		barWidth = 10
	}

	graph := chart.BarChart{
		Title:    "Negotiation Strategy Scores",
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(top/10) * 10},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func shortLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= maxLabelLength {
		return name
	}
	return string(runes[:maxLabelLength-1]) + "…"
}
