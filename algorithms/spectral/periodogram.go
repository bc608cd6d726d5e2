package spectral

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/RyanBlaney/qspectra/algorithms/regression"
	"github.com/RyanBlaney/qspectra/logging"
)

// ScoreKind selects how a harmonic fit is turned into spectral power
type ScoreKind int

const (
	// ScoreCoefficient scores a cell by the squared magnitude of the two
	// harmonic coefficients (type 1)
	ScoreCoefficient ScoreKind = iota

	// ScoreCost scores a cell by the check-loss reduction attributable to
	// the harmonic term (type 2)
	ScoreCost
)

func (s ScoreKind) String() string {
	switch s {
	case ScoreCoefficient:
		return "coefficient"
	case ScoreCost:
		return "cost"
	default:
		return "unknown"
	}
}

// QuantilePeriodogram holds the frequency x quantile power matrix of one
// series. All entries are non-negative; negative numerical artifacts are
// clipped at build time.
type QuantilePeriodogram struct {
	Power       [][]float64 `json:"power"` // [frequency][quantile]
	Frequencies []float64   `json:"frequencies"`
	Taus        []float64   `json:"taus"`

	// DegradedCells counts grid cells where the regression solver failed
	// and a zero-effect fit was substituted
	DegradedCells int `json:"degraded_cells"`
}

// PeriodogramBuilder sweeps the frequency and quantile grids with harmonic
// quantile regressions. The per-frequency fits are independent and run on
// a worker pool; rows are merged back by frequency index.
type PeriodogramBuilder struct {
	score   ScoreKind
	fitter  *regression.HarmonicFitter
	workers int
	logger  logging.Logger
}

// NewPeriodogramBuilder creates a builder. workers <= 0 sizes the pool
// from the machine.
func NewPeriodogramBuilder(score ScoreKind, intercept bool, workers int) *PeriodogramBuilder {
	return &PeriodogramBuilder{
		score:   score,
		fitter:  regression.NewHarmonicFitter(intercept),
		workers: workers,
		logger: logging.WithFields(logging.Fields{
			"component": "periodogram_builder",
		}),
	}
}

// Workers reports the configured pool size; values <= 0 defer to the
// machine CPU count at compute time.
func (b *PeriodogramBuilder) Workers() int {
	return b.workers
}

// Compute builds the quantile periodogram of a series over the given
// frequency and quantile grids.
func (b *PeriodogramBuilder) Compute(series, freqs, taus []float64) (*QuantilePeriodogram, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("empty frequency grid")
	}
	if len(taus) == 0 {
		return nil, fmt.Errorf("empty quantile grid")
	}
	for _, f := range freqs {
		if f <= 0 || f >= 0.5 {
			return nil, fmt.Errorf("frequency %f outside (0, 0.5)", f)
		}
	}
	for _, tau := range taus {
		if tau <= 0 || tau >= 1 {
			return nil, fmt.Errorf("quantile level %f outside (0, 1)", tau)
		}
	}

	result := &QuantilePeriodogram{
		Power:       make([][]float64, len(freqs)),
		Frequencies: append([]float64(nil), freqs...),
		Taus:        append([]float64(nil), taus...),
	}

	degraded := make([]int, len(freqs))

	jobs := make(chan int, len(freqs))
	numWorkers := b.workerCount(len(freqs))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fIdx := range jobs {
				row, rowDegraded := b.scoreRow(series, freqs[fIdx], taus)
				result.Power[fIdx] = row
				degraded[fIdx] = rowDegraded
			}
		}()
	}

	for fIdx := range freqs {
		jobs <- fIdx
	}
	close(jobs)
	wg.Wait()

	for _, d := range degraded {
		result.DegradedCells += d
	}
	if result.DegradedCells > 0 {
		b.logger.Debug("periodogram cells degraded to zero fits", logging.Fields{
			"cells": result.DegradedCells,
			"grid":  len(freqs) * len(taus),
		})
	}

	return result, nil
}

// ComputeAt scores a single frequency for every quantile level. The
// special frequencies 0 and 0.5, which are not grid members, are
// addressable through this path.
func (b *PeriodogramBuilder) ComputeAt(series []float64, freq float64, taus []float64) []float64 {
	row, _ := b.scoreRow(series, freq, taus)
	return row
}

// ComputeGaussian builds the classical least-squares periodogram used as
// the mean-based comparison spectrum.
func (b *PeriodogramBuilder) ComputeGaussian(series, freqs []float64) ([]float64, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("empty frequency grid")
	}

	n := float64(len(series))
	power := make([]float64, len(freqs))
	for i, f := range freqs {
		fit := b.fitter.FitGaussian(series, f, nil)
		power[i] = n * (fit.Cos*fit.Cos + fit.Sin*fit.Sin) / (4 * math.Pi)
	}
	return power, nil
}

// scoreRow computes one frequency's scores across the quantile grid
func (b *PeriodogramBuilder) scoreRow(series []float64, freq float64, taus []float64) ([]float64, int) {
	row := make([]float64, len(taus))
	degraded := 0

	switch b.score {
	case ScoreCost:
		costs := b.fitter.QuantileCosts(series, freq, taus, nil)
		for i, c := range costs {
			if c.Degraded {
				degraded++
			}
			row[i] = c.Cost
		}
	default:
		n := float64(len(series))
		fits := b.fitter.FitQuantile(series, freq, taus, nil)
		for i, fit := range fits {
			if fit.Degraded {
				degraded++
			}
			row[i] = n * (fit.Cos*fit.Cos + fit.Sin*fit.Sin) / (4 * math.Pi)
		}
	}

	// Negative scores are numerical artifacts
	for i, v := range row {
		if v < 0 || math.IsNaN(v) {
			row[i] = 0
		}
	}

	return row, degraded
}

// workerCount sizes the pool for the frequency sweep
func (b *PeriodogramBuilder) workerCount(numFreqs int) int {
	workers := b.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > numFreqs {
		workers = numFreqs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
