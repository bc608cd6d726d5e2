package spectral

import (
	"fmt"

	"github.com/RyanBlaney/qspectra/algorithms/common"
)

// PseudoACFTransform turns a quantile periodogram column into a
// pseudo-autocovariance sequence: the column is mirrored onto the full
// frequency circle, padded away from exact zeros, and inverse-transformed.
// The result is not a true autocovariance but is fed to the Levinson-Durbin
// recursion as one.
type PseudoACFTransform struct {
	fft *FFT

	// padding is the fraction of the column mean added to every non-DC
	// entry; exact zeros break later log-domain steps
	padding float64
}

// NewPseudoACFTransform creates a transform with padding fraction epsilon
func NewPseudoACFTransform(padding float64) (*PseudoACFTransform, error) {
	if padding < 0 {
		return nil, fmt.Errorf("padding fraction %f must be non-negative", padding)
	}
	return &PseudoACFTransform{
		fft:     NewFFT(),
		padding: padding,
	}, nil
}

// Compute builds the length-n pseudo-autocovariance sequence for one
// quantile level. column holds the periodogram over the interior Fourier
// frequencies; nyquist is the separately computed 0.5-frequency entry,
// used only when n is even. Lag 0 of the result is the level's scale.
func (p *PseudoACFTransform) Compute(column []float64, nyquist float64, n int) ([]float64, error) {
	m := (n - 1) / 2
	if len(column) != m {
		return nil, fmt.Errorf("column has %d entries, want %d for series length %d", len(column), m, n)
	}

	pad := p.padding * common.Mean(column)

	// Full circle by even symmetry: DC is zero by construction, the
	// Nyquist entry appears only for even n
	full := make([]complex128, n)
	for i, v := range column {
		full[i+1] = complex(v+pad, 0)
		full[n-1-i] = complex(v+pad, 0)
	}
	if n%2 == 0 {
		full[n/2] = complex(nyquist+pad, 0)
	}

	// The library inverse transform carries the 1/n normalization; the
	// imaginary part is numerically negligible under the symmetry above
	return p.fft.ComputeInverseReal(full), nil
}

// ComputeMatrix transforms every quantile level of a periodogram. power is
// indexed [frequency][quantile]; nyquist holds one 0.5-frequency entry per
// level. The result is indexed [quantile][lag].
func (p *PseudoACFTransform) ComputeMatrix(power [][]float64, nyquist []float64, n int) ([][]float64, error) {
	if len(power) == 0 {
		return nil, fmt.Errorf("empty periodogram")
	}

	levels := len(power[0])
	if nyquist != nil && len(nyquist) != levels {
		return nil, fmt.Errorf("nyquist has %d entries, want %d", len(nyquist), levels)
	}

	acf := make([][]float64, levels)
	column := make([]float64, len(power))

	for level := 0; level < levels; level++ {
		for fIdx := range power {
			column[fIdx] = power[fIdx][level]
		}

		nyq := 0.0
		if nyquist != nil {
			nyq = nyquist[level]
		}

		seq, err := p.Compute(column, nyq, n)
		if err != nil {
			return nil, fmt.Errorf("pseudo-acf at level %d: %w", level, err)
		}
		acf[level] = seq
	}

	return acf, nil
}
