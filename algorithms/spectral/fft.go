package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps the discrete Fourier transform used by the spectral
// transforms. mjibson/go-dsp handles all sizes, including non-power-of-2
// grids, which the full-circle periodogram requires.
type FFT struct {
	// Stateless
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the forward transform of a real sequence
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeInverse computes the normalized inverse transform (the 1/N factor
// is included by the library)
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.IFFT(x)
}

// ComputeInverseReal computes the inverse transform and keeps the real part
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))
	for i, val := range result {
		realResult[i] = real(val)
	}
	return realResult
}
