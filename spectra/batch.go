package spectra

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/qspectra/logging"
)

// FitBatch fits every series independently on a fixed-size worker pool.
// Workers receive only their series index and share no mutable state;
// results are merged back by input position regardless of completion
// order. The pool lives for the duration of one batch, and it is the
// only pool in the run: each worker's frequency sweep is serial.
func (e *Estimator) FitBatch(series [][]float64) ([]*SpectralEstimate, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	estimates := make([]*SpectralEstimate, len(series))
	errs := make([]error, len(series))

	workers := e.settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(series) {
		workers = len(series)
	}

	jobs := make(chan int, len(series))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				estimates[idx], errs[idx] = e.fit(series[idx], e.serial)
			}
		}()
	}

	for idx := range series {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for idx, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", idx, err)
		}
	}

	e.logger.Info("batch fit complete", logging.Fields{
		"series":  len(series),
		"workers": workers,
	})

	return estimates, nil
}

// FlattenBatch vectorizes a batch of estimates into one feature row per
// case, in batch order.
func FlattenBatch(estimates []*SpectralEstimate) [][]float64 {
	rows := make([][]float64, len(estimates))
	for i, est := range estimates {
		rows[i] = est.Flatten()
	}
	return rows
}
