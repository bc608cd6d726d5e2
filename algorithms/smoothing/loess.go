package smoothing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Loess is a local linear scatterplot smoother with tricube weights and a
// fixed span (the fraction of points entering each local fit).
//
// References:
// - Cleveland, W.S. (1979). "Robust Locally Weighted Regression and Smoothing Scatterplots"
type Loess struct {
	span float64
}

// NewLoess creates a loess smoother. Span must lie in (0, 1].
func NewLoess(span float64) (*Loess, error) {
	if span <= 0 || span > 1 {
		return nil, fmt.Errorf("loess span %f outside (0, 1]", span)
	}
	return &Loess{span: span}, nil
}

// Span returns the configured smoothing span
func (l *Loess) Span() float64 {
	return l.span
}

// Smooth evaluates the local fit at every x position. The x values must be
// sorted ascending (the quantile grid is).
func (l *Loess) Smooth(x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has %d values but y has %d", len(x), len(y))
	}
	if len(x) == 0 {
		return []float64{}, nil
	}

	smoothed := make([]float64, len(x))
	for i := range x {
		smoothed[i] = l.fitAt(x, y, i, -1)
	}
	return smoothed, nil
}

// fitAt evaluates the local linear fit at x[target]. When exclude is a
// valid index that point is left out of the fit (used by cross-validation).
func (l *Loess) fitAt(x, y []float64, target, exclude int) float64 {
	n := len(x)

	window := int(math.Ceil(l.span * float64(n)))
	if window < 2 {
		window = 2
	}
	if window > n {
		window = n
	}

	// Nearest-neighbor window around the target on the sorted grid
	lo, hi := target, target
	for hi-lo+1 < window {
		if lo == 0 {
			hi++
		} else if hi == n-1 {
			lo--
		} else if x[target]-x[lo-1] <= x[hi+1]-x[target] {
			lo--
		} else {
			hi++
		}
	}

	maxDist := math.Max(x[target]-x[lo], x[hi]-x[target])

	xs := make([]float64, 0, hi-lo+1)
	ys := make([]float64, 0, hi-lo+1)
	ws := make([]float64, 0, hi-lo+1)

	for j := lo; j <= hi; j++ {
		if j == exclude {
			continue
		}
		w := 1.0
		if maxDist > 0 {
			u := math.Min(math.Abs(x[j]-x[target])/maxDist, 1)
			w = math.Pow(1-u*u*u, 3)
			// Keep boundary points weakly in the fit
			if w <= 0 {
				w = 1e-6
			}
		}
		xs = append(xs, x[j])
		ys = append(ys, y[j])
		ws = append(ws, w)
	}

	if len(xs) == 0 {
		return y[target]
	}
	if len(xs) == 1 {
		return ys[0]
	}

	// Degenerate abscissa collapses the local fit to a weighted mean
	if xs[len(xs)-1] == xs[0] {
		return stat.Mean(ys, ws)
	}

	alpha, beta := stat.LinearRegression(xs, ys, ws, false)
	return alpha + beta*x[target]
}

// CVLoess is a loess smoother that selects its span by leave-one-out
// cross-validation over a fixed candidate list, the analogue of choosing
// smoother degrees of freedom by CV.
type CVLoess struct {
	candidates []float64
}

// NewCVLoess creates a cross-validated loess smoother with the default
// span candidates.
func NewCVLoess() *CVLoess {
	return &CVLoess{
		candidates: []float64{0.3, 0.4, 0.5, 0.6, 0.75, 0.9, 1.0},
	}
}

// Smooth picks the candidate span with the smallest leave-one-out squared
// error and smooths with it.
func (c *CVLoess) Smooth(x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has %d values but y has %d", len(x), len(y))
	}
	if len(x) < 4 {
		// Too few points to cross-validate; pass through
		out := make([]float64, len(y))
		copy(out, y)
		return out, nil
	}

	bestSpan := c.candidates[len(c.candidates)-1]
	bestScore := math.Inf(1)

	for _, span := range c.candidates {
		loess := &Loess{span: span}
		score := 0.0
		for i := range x {
			predicted := loess.fitAt(x, y, i, i)
			diff := y[i] - predicted
			score += diff * diff
		}
		if score < bestScore {
			bestScore = score
			bestSpan = span
		}
	}

	best := &Loess{span: bestSpan}
	return best.Smooth(x, y)
}
