package ar

import (
	"fmt"
	"math/cmplx"
)

// recursionState tracks whether the Levinson-Durbin recursion is still
// producing valid updates or has hit a non-positive innovation variance
// and frozen.
type recursionState int

const (
	stateActive recursionState = iota
	stateFrozen
)

// ARModel holds the output of a Levinson-Durbin recursion for one
// autocovariance (or PACF) sequence: AR coefficients, partial
// autocorrelations and the innovation-variance sequence.
//
// The model convention is x_t + sum_k AR[k-1]*x_{t-k} = e_t, so the
// spectral density is Variances[Order] / |1 + sum_k AR[k-1] e^{-i2pifk}|^2.
type ARModel struct {
	Order     int          `json:"order"`
	AR        []complex128 `json:"-"`
	PACF      []complex128 `json:"-"`
	Variances []float64    `json:"variances"` // sigma^2(0..Order), non-increasing

	// EffectiveOrder counts the recursion steps completed before any
	// freeze; it equals Order for a clean run
	EffectiveOrder int  `json:"effective_order"`
	Frozen         bool `json:"frozen"`
	Degenerate     bool `json:"degenerate"` // r(0) = 0 input
}

// ACFToAR runs the forward complex Levinson-Durbin recursion, solving the
// Yule-Walker system for r(0..order). A non-positive innovation variance
// mid-recursion freezes the remaining steps: later PACF entries are zero,
// later variances copy the last valid value and the AR coefficients stop
// updating. An all-zero r(0) yields the degenerate model with zero
// coefficients and unit variances.
func ACFToAR(r []complex128, order int) (*ARModel, error) {
	if order < 0 {
		return nil, fmt.Errorf("negative AR order %d", order)
	}
	if len(r) < order+1 {
		return nil, fmt.Errorf("need %d autocovariance lags for order %d, have %d", order+1, order, len(r))
	}

	model := &ARModel{
		Order:     order,
		AR:        make([]complex128, order),
		PACF:      make([]complex128, order),
		Variances: make([]float64, order+1),
	}

	r0 := real(r[0])
	if r0 == 0 {
		for i := range model.Variances {
			model.Variances[i] = 1
		}
		model.Degenerate = true
		return model, nil
	}

	model.Variances[0] = r0
	state := stateActive

	for i := 0; i < order; i++ {
		if state == stateFrozen {
			model.Variances[i+1] = model.Variances[i]
			continue
		}

		// Reflection coefficient from the current prediction error
		numerator := r[i+1]
		for j := 0; j < i; j++ {
			numerator += model.AR[j] * r[i-j]
		}
		k := -numerator / complex(model.Variances[i], 0)

		variance := model.Variances[i] * (1 - real(k)*real(k) - imag(k)*imag(k))
		if variance <= 0 {
			// Freeze: discard this step's update entirely
			state = stateFrozen
			model.Frozen = true
			model.Variances[i+1] = model.Variances[i]
			continue
		}

		// Levinson update of the order-i coefficients
		for j := 0; j < i/2; j++ {
			model.AR[j], model.AR[i-1-j] =
				model.AR[j]+k*cmplx.Conj(model.AR[i-1-j]),
				model.AR[i-1-j]+k*cmplx.Conj(model.AR[j])
		}
		if i%2 == 1 {
			mid := i / 2
			model.AR[mid] += k * cmplx.Conj(model.AR[mid])
		}
		model.AR[i] = k
		model.PACF[i] = k
		model.Variances[i+1] = variance
		model.EffectiveOrder = i + 1
	}

	return model, nil
}

// PACFToAR reconstructs AR coefficients and the innovation-variance
// sequence from a partial-autocorrelation sequence by running the
// Levinson update forward. The input is assumed validated (magnitudes
// below one), so no degeneracy check applies. The variance sequence
// starts at 1 and is multiplied by scale.
func PACFToAR(pacf []complex128, scale float64) *ARModel {
	order := len(pacf)

	model := &ARModel{
		Order:          order,
		AR:             make([]complex128, order),
		PACF:           make([]complex128, order),
		Variances:      make([]float64, order+1),
		EffectiveOrder: order,
	}
	copy(model.PACF, pacf)

	model.Variances[0] = 1
	for i, k := range pacf {
		for j := 0; j < i/2; j++ {
			model.AR[j], model.AR[i-1-j] =
				model.AR[j]+k*cmplx.Conj(model.AR[i-1-j]),
				model.AR[i-1-j]+k*cmplx.Conj(model.AR[j])
		}
		if i%2 == 1 {
			mid := i / 2
			model.AR[mid] += k * cmplx.Conj(model.AR[mid])
		}
		model.AR[i] = k
		model.Variances[i+1] = model.Variances[i] * (1 - real(k)*real(k) - imag(k)*imag(k))
	}

	for i := range model.Variances {
		model.Variances[i] *= scale
	}

	return model
}

// InnovationVariance returns the final innovation variance of the model
func (m *ARModel) InnovationVariance() float64 {
	return m.Variances[len(m.Variances)-1]
}

// ToComplex widens a real-valued sequence for the complex recursion
func ToComplex(r []float64) []complex128 {
	c := make([]complex128, len(r))
	for i, v := range r {
		c[i] = complex(v, 0)
	}
	return c
}
