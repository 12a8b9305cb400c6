package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlotSeries(t *testing.T) {
	assert.Empty(t, PlotSeries(nil, "empty"))

	out := PlotSeries([]float64{0, 1, 0, -1, 0}, "wave")
	assert.Contains(t, out, "wave")
	assert.NotEmpty(t, out)
}

func TestPlotStatesLabels(t *testing.T) {
	states := [][]float64{{0.1, 1.0}, {0.2, 0.9}, {0.3, 0.8}}
	out := PlotStates(states, []string{"link1_RotZ"}, 0)
	assert.Contains(t, out, "link1_RotZ vs time")
	assert.Contains(t, out, "x1 vs time")

	// maxPlots truncates the columns rendered.
	out = PlotStates(states, nil, 1)
	assert.Contains(t, out, "x0 vs time")
	assert.NotContains(t, out, "x1 vs time")
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 3, 2, 1, 0}, 7)
	assert.Equal(t, 7, len([]rune(out)))

	flat := Sparkline([]float64{5, 5, 5}, 3)
	assert.Equal(t, strings.Repeat("▁", 3), flat)

	assert.Equal(t, strings.Repeat("─", 4), Sparkline(nil, 4))
	assert.Empty(t, Sparkline(nil, 0))
	assert.Empty(t, Sparkline([]float64{1, 2}, -3))
}
