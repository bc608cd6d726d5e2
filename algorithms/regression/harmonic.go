package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/qspectra/algorithms/common"
)

// HarmonicFit holds the fitted coefficients of a two-harmonic regression
// y ~ [1] + cos(2*pi*f*t) + sin(2*pi*f*t) at a single frequency.
// Degraded marks fits where the solver failed and zero coefficients were
// substituted.
type HarmonicFit struct {
	Cos       float64 `json:"cos"`
	Sin       float64 `json:"sin"`
	Intercept float64 `json:"intercept"`
	Degraded  bool    `json:"degraded"`
}

// HarmonicCost holds the type-2 score of a harmonic fit: the loss achieved
// by the null model minus the loss achieved by the harmonic model.
type HarmonicCost struct {
	Cost     float64 `json:"cost"`
	Degraded bool    `json:"degraded"`
}

// HarmonicFitter fits two-harmonic regressions at one frequency under
// either squared loss or check loss. It is the building block of the
// quantile periodogram.
//
// Frequencies 0 and 0.5 are identifiable only partially: at 0 only the
// constant term survives, at 0.5 the sine column vanishes on the integer
// sampling grid and its coefficient is forced to zero.
type HarmonicFitter struct {
	intercept bool
	solver    *QuantileRegression
}

// NewHarmonicFitter creates a harmonic fitter. When intercept is true the
// design carries a constant column alongside the two harmonics.
func NewHarmonicFitter(intercept bool) *HarmonicFitter {
	return &HarmonicFitter{
		intercept: intercept,
		solver:    NewQuantileRegression(),
	}
}

// HasIntercept reports whether the design carries a constant column
func (h *HarmonicFitter) HasIntercept() bool {
	return h.intercept
}

// FitGaussian fits the harmonic model under squared loss (the classical
// periodogram variant). A nil weight slice means uniform weights.
func (h *HarmonicFitter) FitGaussian(series []float64, freq float64, weights []float64) *HarmonicFit {
	if len(series) == 0 {
		return &HarmonicFit{}
	}

	if freq == 0 {
		fit := &HarmonicFit{}
		if h.intercept {
			fit.Intercept = common.Mean(series)
		}
		return fit
	}

	design, hasSine := h.buildDesign(len(series), freq)
	beta, err := h.solver.SolveLS(design, series, weights)
	if err != nil {
		return &HarmonicFit{Degraded: true}
	}

	return h.unpack(beta, hasSine, false)
}

// FitQuantile fits the harmonic model by check-loss regression at each
// quantile level. One call covers all levels against a shared design; a
// solver failure at one level degrades that level alone to a zero fit.
func (h *HarmonicFitter) FitQuantile(series []float64, freq float64, taus []float64, weights []float64) []HarmonicFit {
	fits := make([]HarmonicFit, len(taus))
	if len(series) == 0 {
		return fits
	}

	if freq == 0 {
		for i, tau := range taus {
			if h.intercept {
				fits[i].Intercept = common.WeightedQuantile(series, weights, tau)
			}
		}
		return fits
	}

	design, hasSine := h.buildDesign(len(series), freq)

	for i, tau := range taus {
		beta, err := h.solver.Solve(design, series, tau, weights)
		if err != nil {
			fits[i] = HarmonicFit{Degraded: true}
			continue
		}
		fits[i] = *h.unpack(beta, hasSine, false)
	}

	return fits
}

// QuantileCosts computes the type-2 score at each quantile level: the check
// loss of the null model (intercept-only when the design has an intercept,
// the raw series otherwise) minus the check loss of the harmonic fit.
// Degraded levels score zero.
func (h *HarmonicFitter) QuantileCosts(series []float64, freq float64, taus []float64, weights []float64) []HarmonicCost {
	costs := make([]HarmonicCost, len(taus))
	if len(series) == 0 || freq == 0 {
		return costs
	}

	design, _ := h.buildDesign(len(series), freq)
	residuals := make([]float64, len(series))

	for i, tau := range taus {
		nullLoss := h.nullLoss(series, tau, weights)

		beta, err := h.solver.Solve(design, series, tau, weights)
		if err != nil {
			costs[i] = HarmonicCost{Degraded: true}
			continue
		}

		h.solver.computeResiduals(design, series, beta, residuals)
		costs[i].Cost = nullLoss - CheckLoss(residuals, tau, weights)
	}

	return costs
}

// nullLoss computes the check loss of the best model without harmonics
func (h *HarmonicFitter) nullLoss(series []float64, tau float64, weights []float64) float64 {
	residuals := make([]float64, len(series))
	if h.intercept {
		q := common.WeightedQuantile(series, weights, tau)
		for i, v := range series {
			residuals[i] = v - q
		}
	} else {
		copy(residuals, series)
	}
	return CheckLoss(residuals, tau, weights)
}

// buildDesign assembles the regression design at a frequency. The sine
// column is omitted at the Nyquist frequency where it vanishes on the
// sampling grid.
func (h *HarmonicFitter) buildDesign(n int, freq float64) (*mat.Dense, bool) {
	hasSine := freq != 0.5

	cols := 2
	if !hasSine {
		cols = 1
	}
	offset := 0
	if h.intercept {
		cols++
		offset = 1
	}

	design := mat.NewDense(n, cols, nil)
	for t := 0; t < n; t++ {
		angle := 2 * math.Pi * freq * float64(t+1)
		if h.intercept {
			design.Set(t, 0, 1)
		}
		design.Set(t, offset, math.Cos(angle))
		if hasSine {
			design.Set(t, offset+1, math.Sin(angle))
		}
	}

	return design, hasSine
}

// unpack maps a coefficient vector back onto the named harmonic terms
func (h *HarmonicFitter) unpack(beta []float64, hasSine, degraded bool) *HarmonicFit {
	fit := &HarmonicFit{Degraded: degraded}

	idx := 0
	if h.intercept {
		fit.Intercept = beta[0]
		idx = 1
	}
	fit.Cos = beta[idx]
	if hasSine {
		fit.Sin = beta[idx+1]
	}

	return fit
}
