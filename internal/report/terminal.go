package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(72)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(14)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			MarginTop(1)

	predictionStyles = map[string]lipgloss.Style{
		"text-green":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		"text-red":    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		"text-yellow": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
	}

	trendStyles = map[Trend]lipgloss.Style{
		TrendUp:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		TrendDown:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		TrendNeutral: lipgloss.NewStyle(),
	}
)

// RenderTerminal draws the result card for a terminal.
func RenderTerminal(v View) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("Analysis Result"))
	b.WriteString("\n\n")

	row("Prediction", predictionStyles[v.PredictionClass].Render(v.Prediction))
	row("Confidence", v.Confidence)
	row("Trend", trendStyles[v.TrendIcon].Render(v.TrendIcon.Symbol())+" "+v.Trend)
	row("Timeframe", v.Timeframe)
	row("Platform", v.Platform)

	b.WriteString(sectionStyle.Render("MACD"))
	b.WriteString("\n")
	row("Value", v.MACD.Value)
	row("Signal", v.MACD.Signal)
	row("Histogram", v.MACD.Histogram)
	row("State", v.MACD.State)

	if len(v.Fractals) > 0 {
		b.WriteString(sectionStyle.Render("Fractal signals"))
		b.WriteString("\n")
		for _, f := range v.Fractals {
			b.WriteString(fmt.Sprintf("  %s @ %s (%s)\n", f.Type, f.Position, f.Confidence))
		}
	}

	b.WriteString(sectionStyle.Render("Explanation"))
	b.WriteString("\n")
	b.WriteString(v.Explanation)

	return cardStyle.Render(b.String())
}
