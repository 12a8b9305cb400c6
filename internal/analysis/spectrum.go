// Package analysis extracts summary quantities from recorded trajectories.
package analysis

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns the magnitude of the one-sided spectrum of the
// series, after zero-padding to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, padded)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		ps[i] = re*re + im*im
	}
	return ps
}

// DominantFrequency returns the strongest nonzero frequency in hertz of a
// series sampled every dt seconds, alongside its power. A flat series
// reports zero frequency.
func DominantFrequency(data []float64, dt float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}

	// Skip the DC bin.
	maxIdx, maxPower := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0, 0
	}

	n := 2 * (len(ps) - 1)
	freq := float64(maxIdx) / (float64(n) * dt)
	return freq, maxPower
}
