package spectral

import (
	"math"
)

// ARSpectrum evaluates the AR transfer-function spectral density
// sigma^2 / |1 + sum_k a_k e^{-i2pifk}|^2 over a frequency grid.
type ARSpectrum struct {
	// Stateless
}

// NewARSpectrum creates a new spectrum evaluator
func NewARSpectrum() *ARSpectrum {
	return &ARSpectrum{}
}

// Evaluate computes the spectral density at each frequency for the given
// AR coefficients and innovation variance. The result is non-negative by
// construction; the transfer denominator is floored to keep the output
// finite when a pole sits numerically on the unit circle.
func (a *ARSpectrum) Evaluate(coeffs []complex128, variance float64, freqs []float64) []float64 {
	spectrum := make([]float64, len(freqs))
	if variance < 0 {
		variance = 0
	}

	for i, f := range freqs {
		transfer := complex(1, 0)
		for k, c := range coeffs {
			angle := -2 * math.Pi * f * float64(k+1)
			transfer += c * complex(math.Cos(angle), math.Sin(angle))
		}

		denom := real(transfer)*real(transfer) + imag(transfer)*imag(transfer)
		if denom < 1e-12 {
			denom = 1e-12
		}
		spectrum[i] = variance / denom
	}

	return spectrum
}

// Rescale multiplies a spectrum in place so that its zero-lag power
// matches target/raw. A zero raw scale leaves the spectrum untouched.
func (a *ARSpectrum) Rescale(spectrum []float64, raw, target float64) {
	if raw == 0 {
		return
	}
	factor := target / raw
	for i := range spectrum {
		spectrum[i] *= factor
	}
}
