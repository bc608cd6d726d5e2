package config

import (
	"fmt"

	"github.com/RyanBlaney/qspectra/algorithms/ar"
	"github.com/RyanBlaney/qspectra/algorithms/smoothing"
	"github.com/RyanBlaney/qspectra/algorithms/spectral"
)

// Config is the user-facing configuration of a spectral fit. Method
// selectors are strings for easy serialization; Resolve validates them
// into closed enums exactly once, before any fit begins.
type Config struct {
	// Quantile levels of the estimate, each in (0, 1)
	QuantileLevels []float64 `json:"quantile_levels"`

	// Score selects the periodogram scoring: "coefficient" (type 1,
	// squared harmonic coefficients) or "cost" (type 2, check-loss
	// reduction)
	Score string `json:"score"`

	// Intercept includes a constant column in the harmonic design
	Intercept bool `json:"intercept"`

	// Criterion selects AR order handling: "aic", "bic", "aicc" or
	// "fixed" (use FixedOrder directly, no selection)
	Criterion  string `json:"criterion"`
	FixedOrder int    `json:"fixed_order,omitempty"`

	// OrderCeiling caps criterion-based selection; 0 means the default
	// floor(gridLength/4)
	OrderCeiling int `json:"order_ceiling,omitempty"`

	// PACF smoothing across quantile levels on the Fisher-z scale
	SmoothPACF bool    `json:"smooth_pacf"`
	PACFMethod string  `json:"pacf_method,omitempty"` // "loess" or "loess-cv"
	PACFSpan   float64 `json:"pacf_span,omitempty"`

	// Scale smoothing of the per-level zero-lag power
	SmoothScale bool    `json:"smooth_scale"`
	ScaleMethod string  `json:"scale_method,omitempty"`
	ScaleSpan   float64 `json:"scale_span,omitempty"`

	// Padding is the epsilon fraction of the column mean added before the
	// inverse transform
	Padding float64 `json:"padding"`

	// OutputFrequencies, when set, evaluates the final spectrum at these
	// frequencies instead of the full estimation grid
	OutputFrequencies []float64 `json:"output_frequencies,omitempty"`

	// Workers sizes the pools on both parallel axes; <= 0 uses the
	// machine CPU count
	Workers int `json:"workers"`
}

// Default returns sensible defaults: a 9-level uniform quantile grid,
// type-2 scoring with intercept, AIC selection and no smoothing.
func Default() *Config {
	levels := make([]float64, 9)
	for i := range levels {
		levels[i] = float64(i+1) / 10
	}

	return &Config{
		QuantileLevels: levels,
		Score:          "cost",
		Intercept:      true,
		Criterion:      "aic",
		PACFMethod:     "loess",
		PACFSpan:       0.6,
		ScaleMethod:    "loess",
		ScaleSpan:      0.6,
		Padding:        0.01,
	}
}

// Settings is the validated, enum-dispatched form of a Config
type Settings struct {
	QuantileLevels []float64
	Score          spectral.ScoreKind
	Intercept      bool

	FixedOrder   bool
	Order        int // fixed order when FixedOrder, otherwise unused
	Criterion    ar.Criterion
	OrderCeiling int // 0 means derive from the grid length

	SmoothPACF    bool
	PACFSmoother  smoothing.Smoother
	SmoothScale   bool
	ScaleSmoother smoothing.Smoother

	Padding           float64
	OutputFrequencies []float64
	Workers           int
}

// Resolve validates the configuration and resolves every string method
// selector into its enum or concrete implementation. Any failure here is
// fatal; no fit may begin on an unresolved config.
func (c *Config) Resolve() (*Settings, error) {
	if len(c.QuantileLevels) == 0 {
		return nil, fmt.Errorf("no quantile levels configured")
	}
	for _, tau := range c.QuantileLevels {
		if tau <= 0 || tau >= 1 {
			return nil, fmt.Errorf("quantile level %f outside (0, 1)", tau)
		}
	}
	if c.Padding < 0 {
		return nil, fmt.Errorf("padding fraction %f must be non-negative", c.Padding)
	}
	for _, f := range c.OutputFrequencies {
		if f < 0 || f > 0.5 {
			return nil, fmt.Errorf("output frequency %f outside [0, 0.5]", f)
		}
	}

	settings := &Settings{
		QuantileLevels:    append([]float64(nil), c.QuantileLevels...),
		Intercept:         c.Intercept,
		OrderCeiling:      c.OrderCeiling,
		SmoothPACF:        c.SmoothPACF,
		SmoothScale:       c.SmoothScale,
		Padding:           c.Padding,
		OutputFrequencies: append([]float64(nil), c.OutputFrequencies...),
		Workers:           c.Workers,
	}

	switch c.Score {
	case "coefficient", "coef":
		settings.Score = spectral.ScoreCoefficient
	case "cost", "":
		settings.Score = spectral.ScoreCost
	default:
		return nil, fmt.Errorf("unknown score type %q", c.Score)
	}

	switch c.Criterion {
	case "aic", "":
		settings.Criterion = ar.CriterionAIC
	case "bic":
		settings.Criterion = ar.CriterionBIC
	case "aicc":
		settings.Criterion = ar.CriterionAICc
	case "fixed":
		if c.FixedOrder < 0 {
			return nil, fmt.Errorf("fixed order %d must be non-negative", c.FixedOrder)
		}
		settings.FixedOrder = true
		settings.Order = c.FixedOrder
	default:
		return nil, fmt.Errorf("unknown criterion %q", c.Criterion)
	}

	if !settings.FixedOrder && c.OrderCeiling < 0 {
		return nil, fmt.Errorf("order ceiling %d must be non-negative", c.OrderCeiling)
	}

	if c.SmoothPACF {
		sm, err := resolveSmoother(c.PACFMethod, c.PACFSpan)
		if err != nil {
			return nil, fmt.Errorf("pacf smoother: %w", err)
		}
		settings.PACFSmoother = sm
	}
	if c.SmoothScale {
		sm, err := resolveSmoother(c.ScaleMethod, c.ScaleSpan)
		if err != nil {
			return nil, fmt.Errorf("scale smoother: %w", err)
		}
		settings.ScaleSmoother = sm
	}

	return settings, nil
}

// resolveSmoother maps a method name and bandwidth onto a Smoother
func resolveSmoother(method string, span float64) (smoothing.Smoother, error) {
	switch method {
	case "loess", "":
		if span == 0 {
			span = 0.6
		}
		return smoothing.New(smoothing.MethodLoess, span)
	case "loess-cv":
		return smoothing.New(smoothing.MethodLoessCV, 0)
	default:
		return nil, fmt.Errorf("unknown smoothing method %q", method)
	}
}
