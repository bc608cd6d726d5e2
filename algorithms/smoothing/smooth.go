package smoothing

import (
	"fmt"
	"math"
)

// Method identifies a scatterplot smoother implementation
type Method int

const (
	// Loess with a fixed span
	MethodLoess Method = iota

	// Loess with the span chosen by leave-one-out cross-validation
	MethodLoessCV
)

func (m Method) String() string {
	switch m {
	case MethodLoess:
		return "loess"
	case MethodLoessCV:
		return "loess-cv"
	default:
		return "unknown"
	}
}

// Smoother is the pluggable scatterplot-smoother contract: given matched
// (x, y) samples it returns smoothed y values at the same x positions.
type Smoother interface {
	Smooth(x, y []float64) ([]float64, error)
}

// New creates a smoother for the given method. The span only applies to
// the fixed-span method.
func New(method Method, span float64) (Smoother, error) {
	switch method {
	case MethodLoess:
		return NewLoess(span)
	case MethodLoessCV:
		return NewCVLoess(), nil
	default:
		return nil, fmt.Errorf("unknown smoothing method %d", method)
	}
}

// pacfBound keeps smoothed partial autocorrelations strictly inside the
// stability region after the inverse Fisher transform
const pacfBound = 0.999

// FisherZ maps a partial autocorrelation to the unbounded z scale, which
// stabilizes smoothing against the [-1, 1] boundary
func FisherZ(v float64) float64 {
	if v > pacfBound {
		v = pacfBound
	} else if v < -pacfBound {
		v = -pacfBound
	}
	return math.Atanh(v)
}

// InverseFisherZ maps a z-scale value back to (-1, 1)
func InverseFisherZ(z float64) float64 {
	v := math.Tanh(z)
	if v > pacfBound {
		v = pacfBound
	} else if v < -pacfBound {
		v = -pacfBound
	}
	return v
}

// SmoothPACF smooths a PACF matrix row-wise across quantile levels on the
// Fisher-z scale. The input is indexed [level][lag]; every lag row is
// smoothed against the quantile grid and transformed back.
func SmoothPACF(sm Smoother, taus []float64, pacf [][]float64) ([][]float64, error) {
	if len(pacf) != len(taus) {
		return nil, fmt.Errorf("pacf has %d levels but grid has %d", len(pacf), len(taus))
	}
	if len(pacf) == 0 {
		return [][]float64{}, nil
	}

	order := len(pacf[0])
	smoothed := make([][]float64, len(taus))
	for level := range smoothed {
		if len(pacf[level]) != order {
			return nil, fmt.Errorf("ragged pacf matrix: level %d has %d lags, want %d", level, len(pacf[level]), order)
		}
		smoothed[level] = make([]float64, order)
	}

	row := make([]float64, len(taus))
	for lag := 0; lag < order; lag++ {
		for level := range taus {
			row[level] = FisherZ(pacf[level][lag])
		}

		fitted, err := sm.Smooth(taus, row)
		if err != nil {
			return nil, fmt.Errorf("pacf smoothing at lag %d: %w", lag+1, err)
		}

		for level := range taus {
			smoothed[level][lag] = InverseFisherZ(fitted[level])
		}
	}

	return smoothed, nil
}

// SmoothScale smooths the per-level scale sequence against the quantile
// grid. Smoothed scales are floored at zero to stay interpretable as
// power.
func SmoothScale(sm Smoother, taus, scale []float64) ([]float64, error) {
	if len(scale) != len(taus) {
		return nil, fmt.Errorf("scale has %d values but grid has %d", len(scale), len(taus))
	}

	fitted, err := sm.Smooth(taus, scale)
	if err != nil {
		return nil, fmt.Errorf("scale smoothing: %w", err)
	}

	for i, v := range fitted {
		if v < 0 {
			fitted[i] = 0
		}
	}
	return fitted, nil
}
