package spectra

import (
	"fmt"

	"github.com/RyanBlaney/qspectra/algorithms/ar"
	"github.com/RyanBlaney/qspectra/algorithms/smoothing"
	"github.com/RyanBlaney/qspectra/algorithms/spectral"
	"github.com/RyanBlaney/qspectra/logging"
	"github.com/RyanBlaney/qspectra/spectra/config"
)

// Diagnostics exposes everything the fit decided or silently recovered
// from: the shared order and its criterion curve, degraded periodogram
// cells, frozen or degenerate recursion levels, and the raw and smoothed
// PACF/scale sequences.
type Diagnostics struct {
	Order                  int         `json:"order"`
	CriterionCurve         []float64   `json:"criterion_curve,omitempty"`
	IgnoredCriterionValues int         `json:"ignored_criterion_values"`
	DegradedCells          int         `json:"degraded_cells"`
	EffectiveOrders        []int       `json:"effective_orders"`
	FrozenLevels           int         `json:"frozen_levels"`
	DegenerateLevels       int         `json:"degenerate_levels"`
	RawScale               []float64   `json:"raw_scale"`
	SmoothedScale          []float64   `json:"smoothed_scale,omitempty"`
	RawPACF                [][]float64 `json:"raw_pacf"`
	SmoothedPACF           [][]float64 `json:"smoothed_pacf,omitempty"`
}

// SpectralEstimate is the final smoothed AR-type spectral density of one
// series, indexed [frequency][quantile], plus the periodogram it came
// from and the fit diagnostics.
type SpectralEstimate struct {
	Power       [][]float64 `json:"power"`
	Frequencies []float64   `json:"frequencies"`
	Taus        []float64   `json:"taus"`

	Periodogram *spectral.QuantilePeriodogram `json:"-"`
	Diagnostics Diagnostics                   `json:"diagnostics"`
}

// Flatten vectorizes the estimate row-major (frequency-major) into the
// one-row-per-case feature layout the downstream classifier consumes.
func (s *SpectralEstimate) Flatten() []float64 {
	flat := make([]float64, 0, len(s.Power)*len(s.Taus))
	for _, row := range s.Power {
		flat = append(flat, row...)
	}
	return flat
}

// Estimator fits quantile spectral estimates: quantile periodogram,
// pseudo-autocovariance, Levinson-Durbin AR models with shared order
// selection, optional cross-level smoothing and AR spectrum
// reconstruction. A fit is a pure function of (series, configuration);
// estimators are safe to share across series.
type Estimator struct {
	settings  *config.Settings
	builder   *spectral.PeriodogramBuilder
	transform *spectral.PseudoACFTransform
	selector  *ar.OrderSelector
	arspec    *spectral.ARSpectrum
	logger    logging.Logger

	// serial sweeps frequencies on a single worker. Batch fits pool
	// across series, so only one axis may pool per run.
	serial *spectral.PeriodogramBuilder
}

// NewEstimator resolves the configuration and assembles the pipeline.
// Configuration errors are fatal here, before any fit begins.
func NewEstimator(cfg *config.Config) (*Estimator, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	settings, err := cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	transform, err := spectral.NewPseudoACFTransform(settings.Padding)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &Estimator{
		settings:  settings,
		builder:   spectral.NewPeriodogramBuilder(settings.Score, settings.Intercept, settings.Workers),
		serial:    spectral.NewPeriodogramBuilder(settings.Score, settings.Intercept, 1),
		transform: transform,
		arspec:    spectral.NewARSpectrum(),
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_estimator",
		}),
	}
	if !settings.FixedOrder {
		e.selector = ar.NewOrderSelector(settings.Criterion)
	}

	return e, nil
}

// Fit computes the quantile periodogram of a series over its Fourier
// frequency grid and turns it into a spectral estimate.
func (e *Estimator) Fit(series []float64) (*SpectralEstimate, error) {
	return e.fit(series, e.builder)
}

func (e *Estimator) fit(series []float64, builder *spectral.PeriodogramBuilder) (*SpectralEstimate, error) {
	freqs := spectral.FourierFrequencies(len(series))
	if len(freqs) == 0 {
		return nil, fmt.Errorf("series length %d leaves an empty frequency grid", len(series))
	}

	periodogram, err := builder.Compute(series, freqs, e.settings.QuantileLevels)
	if err != nil {
		return nil, err
	}

	return e.FitWithPeriodogram(series, periodogram)
}

// FitWithPeriodogram runs the AR estimation stage on a precomputed
// periodogram. The periodogram must cover the series' full interior
// Fourier grid; it is retained on the estimate for feature extraction.
func (e *Estimator) FitWithPeriodogram(series []float64, periodogram *spectral.QuantilePeriodogram) (*SpectralEstimate, error) {
	n := len(series)
	taus := periodogram.Taus
	gridLen := len(periodogram.Frequencies)

	// The Nyquist entry exists only on even-length series and is computed
	// outside the grid
	var nyquist []float64
	if n%2 == 0 {
		nyquist = e.builder.ComputeAt(series, 0.5, taus)
	}

	acfs, err := e.transform.ComputeMatrix(periodogram.Power, nyquist, n)
	if err != nil {
		return nil, err
	}

	estimate := &SpectralEstimate{
		Taus:        append([]float64(nil), taus...),
		Periodogram: periodogram,
		Diagnostics: Diagnostics{
			DegradedCells:   periodogram.DegradedCells,
			EffectiveOrders: make([]int, len(taus)),
			RawScale:        make([]float64, len(taus)),
			RawPACF:         make([][]float64, len(taus)),
		},
	}

	// One order shared across every quantile level
	order, err := e.selectOrder(acfs, n, gridLen, estimate)
	if err != nil {
		return nil, err
	}
	estimate.Diagnostics.Order = order

	// Forward recursion per level at the shared order
	models := make([]*ar.ARModel, len(taus))
	for level, acf := range acfs {
		model, err := ar.ACFToAR(ar.ToComplex(acf[:order+1]), order)
		if err != nil {
			return nil, fmt.Errorf("levinson recursion at level %d: %w", level, err)
		}
		models[level] = model

		estimate.Diagnostics.RawScale[level] = acf[0]
		estimate.Diagnostics.EffectiveOrders[level] = model.EffectiveOrder
		estimate.Diagnostics.RawPACF[level] = realParts(model.PACF)
		if model.Frozen {
			estimate.Diagnostics.FrozenLevels++
		}
		if model.Degenerate {
			estimate.Diagnostics.DegenerateLevels++
		}
	}

	// Optional cross-level PACF smoothing replaces the recursion output
	// before reconstruction
	if e.settings.SmoothPACF && order > 0 {
		smoothed, err := smoothing.SmoothPACF(e.settings.PACFSmoother, taus, estimate.Diagnostics.RawPACF)
		if err != nil {
			return nil, err
		}
		estimate.Diagnostics.SmoothedPACF = smoothed

		for level := range models {
			scale := estimate.Diagnostics.RawScale[level]
			models[level] = ar.PACFToAR(ar.ToComplex(smoothed[level]), scale)
		}
	}

	outputFreqs := e.settings.OutputFrequencies
	if len(outputFreqs) == 0 {
		outputFreqs = periodogram.Frequencies
	}
	estimate.Frequencies = append([]float64(nil), outputFreqs...)

	// Optional scale smoothing pins the zero-lag power of each level to
	// the cross-level smoothed value
	var smoothedScale []float64
	if e.settings.SmoothScale {
		smoothedScale, err = smoothing.SmoothScale(e.settings.ScaleSmoother, taus, estimate.Diagnostics.RawScale)
		if err != nil {
			return nil, err
		}
		estimate.Diagnostics.SmoothedScale = smoothedScale
	}

	spectra := make([][]float64, len(taus))
	for level, model := range models {
		spectrum := e.arspec.Evaluate(model.AR, model.InnovationVariance(), outputFreqs)
		if smoothedScale != nil {
			e.arspec.Rescale(spectrum, estimate.Diagnostics.RawScale[level], smoothedScale[level])
		}
		spectra[level] = spectrum
	}

	// Transpose to the [frequency][quantile] layout of the estimate
	estimate.Power = make([][]float64, len(outputFreqs))
	for fIdx := range outputFreqs {
		row := make([]float64, len(taus))
		for level := range taus {
			row[level] = spectra[level][fIdx]
		}
		estimate.Power[fIdx] = row
	}

	return estimate, nil
}

// selectOrder applies the configured order policy: a fixed order capped at
// floor(gridLen/2), or criterion-based selection capped at
// floor(gridLen/4).
func (e *Estimator) selectOrder(acfs [][]float64, n, gridLen int, estimate *SpectralEstimate) (int, error) {
	if e.settings.FixedOrder {
		order := e.settings.Order
		if limit := gridLen / 2; order > limit {
			e.logger.Warn("fixed order capped by grid length", logging.Fields{
				"requested": order,
				"cap":       limit,
			})
			order = limit
		}
		return order, nil
	}

	ceiling := e.settings.OrderCeiling
	if ceiling <= 0 {
		ceiling = gridLen / 4
	}
	if limit := gridLen / 4; ceiling > limit {
		ceiling = limit
	}
	if ceiling < 1 {
		ceiling = 1
	}

	selection, err := e.selector.Select(acfs, n, ceiling)
	if err != nil {
		return 0, err
	}

	estimate.Diagnostics.CriterionCurve = selection.Curve
	estimate.Diagnostics.IgnoredCriterionValues = selection.IgnoredValues
	return selection.Order, nil
}

// realParts projects a complex sequence onto its real parts
func realParts(values []complex128) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = real(v)
	}
	return out
}
