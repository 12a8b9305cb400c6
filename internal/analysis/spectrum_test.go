package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDominantFrequencyOfSine(t *testing.T) {
	const (
		dt   = 0.01
		freq = 2.0
	)
	data := make([]float64, 1024)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}

	got, power := DominantFrequency(data, dt)
	assert.InDelta(t, freq, got, 0.1)
	assert.Greater(t, power, 0.0)
}

func TestDominantFrequencyFlatSeries(t *testing.T) {
	data := make([]float64, 64)
	freq, power := DominantFrequency(data, 0.01)
	assert.Equal(t, 0.0, freq)
	assert.Equal(t, 0.0, power)
}

func TestPowerSpectrumPadsToPowerOfTwo(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 100))
	// 100 pads to 128 samples, giving 65 one-sided bins.
	assert.Len(t, ps, 65)
}
