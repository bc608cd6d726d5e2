package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across algorithms using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// WeightedQuantile calculates the weighted p-th quantile (p between 0 and 1).
// A nil weight slice means uniform weights.
func WeightedQuantile(data []float64, weights []float64, p float64) float64 {
	if len(data) == 0 || p <= 0 || p >= 1 {
		return 0.0
	}

	type pair struct {
		v, w float64
	}

	pairs := make([]pair, len(data))
	total := 0.0
	for i, v := range data {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		pairs[i] = pair{v, w}
		total += w
	}
	if total <= 0 {
		return 0.0
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

	cum := 0.0
	for _, pr := range pairs {
		cum += pr.w
		if cum >= p*total {
			return pr.v
		}
	}
	return pairs[len(pairs)-1].v
}

// Normalize normalizes data to zero mean and unit variance
func Normalize(data []float64) []float64 {
	if len(data) == 0 {
		return data
	}

	mean := Mean(data)
	std := StandardDeviation(data)

	if std < 1e-10 {
		// Handle constant data
		normalized := make([]float64, len(data))
		for i, val := range data {
			normalized[i] = val - mean
		}
		return normalized
	}

	normalized := make([]float64, len(data))
	for i, val := range data {
		normalized[i] = (val - mean) / std
	}

	return normalized
}

// ArgMin returns the index of the smallest finite entry, or -1 when
// no entry is finite
func ArgMin(data []float64) int {
	best := -1
	bestVal := math.Inf(1)

	for i, val := range data {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		if val < bestVal {
			bestVal = val
			best = i
		}
	}

	return best
}
