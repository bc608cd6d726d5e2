package ar

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/qspectra/algorithms/common"
	"github.com/RyanBlaney/qspectra/logging"
)

// Criterion selects the penalty of the generalized information criterion
// used for AR order selection.
type Criterion int

const (
	// Akaike information criterion, penalty 2p
	CriterionAIC Criterion = iota

	// Bayesian information criterion, penalty log(n)*p
	CriterionBIC

	// Corrected AIC, penalty 2pn/(n-p-1)
	CriterionAICc
)

func (c Criterion) String() string {
	switch c {
	case CriterionAIC:
		return "aic"
	case CriterionBIC:
		return "bic"
	case CriterionAICc:
		return "aicc"
	default:
		return "unknown"
	}
}

// OrderSelection holds the outcome of criterion-based order selection.
// Curve is the cross-level average criterion per candidate order; one
// shared order minimizes it.
type OrderSelection struct {
	Order    int         `json:"order"`
	Curve    []float64   `json:"curve"`
	PerLevel [][]float64 `json:"per_level"`

	// IgnoredValues counts non-finite criterion values excluded from the
	// cross-level average
	IgnoredValues int `json:"ignored_values"`
}

// OrderSelector picks one AR order shared across all quantile levels of a
// series: per-level criterion curves are noisy, and averaging them yields
// spectra with comparable resolution across levels.
type OrderSelector struct {
	criterion Criterion
	logger    logging.Logger
}

// NewOrderSelector creates an order selector for the given criterion
func NewOrderSelector(criterion Criterion) *OrderSelector {
	return &OrderSelector{
		criterion: criterion,
		logger: logging.WithFields(logging.Fields{
			"component": "order_selector",
		}),
	}
}

// Select computes the criterion curve for orders 0..ceiling on each
// level's pseudo-autocovariance sequence (normalized by its lag-0 value),
// averages across levels ignoring non-finite values, and returns the
// minimizing order.
func (s *OrderSelector) Select(acfs [][]float64, n int, ceiling int) (*OrderSelection, error) {
	if len(acfs) == 0 {
		return nil, fmt.Errorf("no autocovariance sequences")
	}
	if ceiling <= 0 {
		return nil, fmt.Errorf("order ceiling %d must be positive", ceiling)
	}
	for _, acf := range acfs {
		if len(acf) < ceiling+1 {
			return nil, fmt.Errorf("need %d lags for order ceiling %d, have %d", ceiling+1, ceiling, len(acf))
		}
	}

	selection := &OrderSelection{
		Curve:    make([]float64, ceiling+1),
		PerLevel: make([][]float64, len(acfs)),
	}

	for level, acf := range acfs {
		curve, err := s.criterionCurve(acf, n, ceiling)
		if err != nil {
			return nil, err
		}
		selection.PerLevel[level] = curve
	}

	// Cross-level average, skipping non-finite entries but keeping count
	// of how many were dropped
	for p := 0; p <= ceiling; p++ {
		sum := 0.0
		finite := 0
		for level := range acfs {
			v := selection.PerLevel[level][p]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				selection.IgnoredValues++
				continue
			}
			sum += v
			finite++
		}
		if finite == 0 {
			selection.Curve[p] = math.Inf(1)
		} else {
			selection.Curve[p] = sum / float64(finite)
		}
	}

	best := common.ArgMin(selection.Curve)
	if best < 0 {
		s.logger.Warn("criterion curve has no finite values, falling back to order 0", logging.Fields{
			"criterion": s.criterion.String(),
		})
		best = 0
	}
	selection.Order = best

	if selection.IgnoredValues > 0 {
		s.logger.Debug("ignored non-finite criterion values", logging.Fields{
			"count": selection.IgnoredValues,
		})
	}

	return selection, nil
}

// criterionCurve computes n*log(sigma^2(p)) + penalty(p) for p=0..ceiling
// from a single forward recursion on the normalized sequence
func (s *OrderSelector) criterionCurve(acf []float64, n int, ceiling int) ([]float64, error) {
	curve := make([]float64, ceiling+1)

	r0 := acf[0]
	if r0 <= 0 {
		// Degenerate level: no information at any order
		for p := range curve {
			curve[p] = math.NaN()
		}
		return curve, nil
	}

	normalized := make([]complex128, ceiling+1)
	for i := 0; i <= ceiling; i++ {
		normalized[i] = complex(acf[i]/r0, 0)
	}

	model, err := ACFToAR(normalized, ceiling)
	if err != nil {
		return nil, err
	}

	for p := 0; p <= ceiling; p++ {
		variance := model.Variances[p]
		if variance <= 0 {
			curve[p] = math.NaN()
			continue
		}
		curve[p] = float64(n)*math.Log(variance) + s.penalty(p, n)
	}

	return curve, nil
}

// penalty returns the order penalty of the configured criterion
func (s *OrderSelector) penalty(p, n int) float64 {
	switch s.criterion {
	case CriterionBIC:
		return math.Log(float64(n)) * float64(p)
	case CriterionAICc:
		if n-p-1 <= 0 {
			return math.Inf(1)
		}
		return 2 * float64(p) * float64(n) / float64(n-p-1)
	default:
		return 2 * float64(p)
	}
}
