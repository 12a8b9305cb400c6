package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// PlotSeries renders one time series as an ASCII chart.
func PlotSeries(values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotStates renders up to maxPlots state variables against time, one chart
// per column, labeled by the given names when available.
func PlotStates(states [][]float64, names []string, maxPlots int) string {
	if len(states) == 0 || len(states[0]) == 0 {
		return ""
	}
	nVars := len(states[0])
	if maxPlots > 0 && nVars > maxPlots {
		nVars = maxPlots
	}

	var b strings.Builder
	for v := 0; v < nVars; v++ {
		data := make([]float64, len(states))
		for i := range states {
			if v < len(states[i]) {
				data[i] = states[i][v]
			}
		}
		caption := fmt.Sprintf("x%d vs time", v)
		if v < len(names) {
			caption = names[v] + " vs time"
		}
		b.WriteString(PlotSeries(data, caption))
		b.WriteString("\n\n")
	}
	return b.String()
}

// Sparkline renders a compact single-line chart of the values.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}
