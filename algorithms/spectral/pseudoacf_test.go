package spectral

import (
	"math"
	"testing"
)

func flatColumn(m int, value float64) []float64 {
	column := make([]float64, m)
	for i := range column {
		column[i] = value
	}
	return column
}

func TestPseudoACFFlatSpectrumOddLength(t *testing.T) {
	// A flat periodogram inverts to a near-delta sequence: lag 0 carries
	// the mean power, every other lag the small DC deficit -c/n
	n := 9
	c := 2.0

	transform, err := NewPseudoACFTransform(0)
	if err != nil {
		t.Fatalf("NewPseudoACFTransform failed: %v", err)
	}

	acf, err := transform.Compute(flatColumn((n-1)/2, c), 0, n)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if len(acf) != n {
		t.Fatalf("acf has %d lags, want %d", len(acf), n)
	}

	wantLag0 := c * float64(n-1) / float64(n)
	if math.Abs(acf[0]-wantLag0) > 1e-10 {
		t.Errorf("lag 0 = %f, want %f", acf[0], wantLag0)
	}
	for k := 1; k < n; k++ {
		if math.Abs(acf[k]+c/float64(n)) > 1e-10 {
			t.Errorf("lag %d = %f, want %f", k, acf[k], -c/float64(n))
		}
	}
}

func TestPseudoACFFlatSpectrumEvenLength(t *testing.T) {
	n := 8
	c := 2.0

	transform, err := NewPseudoACFTransform(0)
	if err != nil {
		t.Fatalf("NewPseudoACFTransform failed: %v", err)
	}

	// The Nyquist entry completes the flat circle on an even grid
	acf, err := transform.Compute(flatColumn((n-1)/2, c), c, n)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	wantLag0 := c * float64(n-1) / float64(n)
	if math.Abs(acf[0]-wantLag0) > 1e-10 {
		t.Errorf("lag 0 = %f, want %f", acf[0], wantLag0)
	}
	for k := 1; k < n; k++ {
		if math.Abs(acf[k]+c/float64(n)) > 1e-10 {
			t.Errorf("lag %d = %f, want %f", k, acf[k], -c/float64(n))
		}
	}
}

func TestPseudoACFPaddingLiftsScale(t *testing.T) {
	n := 9
	c := 2.0
	epsilon := 0.05

	plain, err := NewPseudoACFTransform(0)
	if err != nil {
		t.Fatalf("NewPseudoACFTransform failed: %v", err)
	}
	padded, err := NewPseudoACFTransform(epsilon)
	if err != nil {
		t.Fatalf("NewPseudoACFTransform failed: %v", err)
	}

	base, _ := plain.Compute(flatColumn((n-1)/2, c), 0, n)
	lifted, _ := padded.Compute(flatColumn((n-1)/2, c), 0, n)

	// Uniform padding scales the flat spectrum by 1+epsilon
	if math.Abs(lifted[0]-base[0]*(1+epsilon)) > 1e-10 {
		t.Errorf("padded lag 0 = %f, want %f", lifted[0], base[0]*(1+epsilon))
	}
}

func TestPseudoACFScaleNonNegative(t *testing.T) {
	n := 16
	column := []float64{0.3, 1.2, 0, 2.4, 0.1, 0.9, 3.3}

	transform, err := NewPseudoACFTransform(0.01)
	if err != nil {
		t.Fatalf("NewPseudoACFTransform failed: %v", err)
	}

	acf, err := transform.Compute(column, 0.5, n)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if acf[0] < 0 {
		t.Errorf("lag-0 scale = %f, want non-negative", acf[0])
	}
	// Even symmetry makes the sequence symmetric in lag
	for k := 1; k < n/2; k++ {
		if math.Abs(acf[k]-acf[n-k]) > 1e-10 {
			t.Errorf("asymmetry at lag %d: %f vs %f", k, acf[k], acf[n-k])
		}
	}
}

func TestPseudoACFValidation(t *testing.T) {
	if _, err := NewPseudoACFTransform(-0.1); err == nil {
		t.Error("expected error for negative padding")
	}

	transform, _ := NewPseudoACFTransform(0)
	if _, err := transform.Compute([]float64{1, 2}, 0, 9); err == nil {
		t.Error("expected error for wrong column length")
	}
}

func TestPseudoACFMatrix(t *testing.T) {
	n := 9
	power := [][]float64{
		{1, 2},
		{1, 2},
		{1, 2},
		{1, 2},
	}

	transform, _ := NewPseudoACFTransform(0)
	acfs, err := transform.ComputeMatrix(power, nil, n)
	if err != nil {
		t.Fatalf("ComputeMatrix failed: %v", err)
	}

	if len(acfs) != 2 {
		t.Fatalf("got %d levels, want 2", len(acfs))
	}
	// Second level has twice the power of the first at every lag
	for k := range acfs[0] {
		if math.Abs(acfs[1][k]-2*acfs[0][k]) > 1e-10 {
			t.Errorf("lag %d: level 1 = %f, want %f", k, acfs[1][k], 2*acfs[0][k])
		}
	}
}
