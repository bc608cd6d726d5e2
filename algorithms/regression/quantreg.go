package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence is the sentinel returned when the iteratively reweighted
// solver fails to settle within the iteration limit. Callers are expected
// to degrade gracefully rather than abort.
var ErrNoConvergence = errors.New("quantile regression did not converge")

// QuantileRegression solves check-loss regression problems by iteratively
// reweighted least squares (IRLS). The check loss at level tau weights
// positive residuals by tau and negative residuals by 1-tau; IRLS
// approximates it by a sequence of weighted L2 problems.
//
// References:
// - Koenker, R. (2005). "Quantile Regression"
// - Schlossmacher, E.J. (1973). "An Iterative Technique for Absolute Deviations Curve Fitting"
type QuantileRegression struct {
	maxIterations int
	tolerance     float64

	// Residual magnitude floor for the IRLS weights. Residuals below this
	// would otherwise produce unbounded weights.
	residualFloor float64
}

// NewQuantileRegression creates a solver with default iteration settings
func NewQuantileRegression() *QuantileRegression {
	return &QuantileRegression{
		maxIterations: 100,
		tolerance:     1e-8,
		residualFloor: 1e-8,
	}
}

// NewQuantileRegressionWithParams creates a solver with custom iteration settings
func NewQuantileRegressionWithParams(maxIterations int, tolerance float64) *QuantileRegression {
	return &QuantileRegression{
		maxIterations: maxIterations,
		tolerance:     tolerance,
		residualFloor: 1e-8,
	}
}

// CheckLoss computes the total weighted check loss of a residual vector at
// quantile level tau. A nil weight slice means uniform weights.
func CheckLoss(residuals []float64, tau float64, weights []float64) float64 {
	loss := 0.0
	for i, r := range residuals {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if r >= 0 {
			loss += w * tau * r
		} else {
			loss -= w * (1 - tau) * r
		}
	}
	return loss
}

// Solve fits response ~ design under check loss at level tau with optional
// observation weights. It returns the fitted coefficient vector or
// ErrNoConvergence when the IRLS iteration fails to settle.
func (qr *QuantileRegression) Solve(design *mat.Dense, response []float64, tau float64, weights []float64) ([]float64, error) {
	rows, cols := design.Dims()
	if rows != len(response) {
		return nil, fmt.Errorf("design has %d rows but response has %d values", rows, len(response))
	}
	if tau <= 0 || tau >= 1 {
		return nil, fmt.Errorf("quantile level %f outside (0, 1)", tau)
	}

	// Start from the weighted least-squares solution
	beta, err := qr.SolveLS(design, response, weights)
	if err != nil {
		return nil, err
	}

	residuals := make([]float64, rows)
	irlsWeights := make([]float64, rows)

	for iter := 0; iter < qr.maxIterations; iter++ {
		qr.computeResiduals(design, response, beta, residuals)

		// Check-loss IRLS weights: tau on positive residuals, 1-tau on
		// negative, divided by the residual magnitude (floored).
		for i, r := range residuals {
			side := tau
			if r < 0 {
				side = 1 - tau
			}
			w := 1.0
			if weights != nil {
				w = weights[i]
			}
			irlsWeights[i] = w * side / math.Max(math.Abs(r), qr.residualFloor)
		}

		next, err := qr.SolveLS(design, response, irlsWeights)
		if err != nil {
			return nil, err
		}

		delta := 0.0
		for j := 0; j < cols; j++ {
			delta = math.Max(delta, math.Abs(next[j]-beta[j]))
		}
		beta = next

		if delta < qr.tolerance {
			return beta, nil
		}
	}

	return nil, ErrNoConvergence
}

// SolveLS fits response ~ design by (weighted) least squares in a single
// solve. A nil weight slice means ordinary least squares.
func (qr *QuantileRegression) SolveLS(design *mat.Dense, response []float64, weights []float64) ([]float64, error) {
	rows, cols := design.Dims()
	if rows != len(response) {
		return nil, fmt.Errorf("design has %d rows but response has %d values", rows, len(response))
	}

	a := design
	b := mat.NewVecDense(rows, nil)
	for i, v := range response {
		b.SetVec(i, v)
	}

	if weights != nil {
		// Scale rows by sqrt(weight) so the L2 solve minimizes the
		// weighted sum of squares
		scaled := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			s := math.Sqrt(math.Max(weights[i], 0))
			for j := 0; j < cols; j++ {
				scaled.Set(i, j, s*design.At(i, j))
			}
			b.SetVec(i, s*response[i])
		}
		a = scaled
	}

	var solution mat.VecDense
	if err := solution.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("least-squares solve failed: %w", err)
	}

	beta := make([]float64, cols)
	for j := 0; j < cols; j++ {
		beta[j] = solution.AtVec(j)
	}
	return beta, nil
}

// computeResiduals fills residuals with response - design*beta
func (qr *QuantileRegression) computeResiduals(design *mat.Dense, response []float64, beta []float64, residuals []float64) {
	rows, cols := design.Dims()
	for i := 0; i < rows; i++ {
		fitted := 0.0
		for j := 0; j < cols; j++ {
			fitted += design.At(i, j) * beta[j]
		}
		residuals[i] = response[i] - fitted
	}
}
