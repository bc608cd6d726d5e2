package smoothing

import (
	"math"
	"testing"
)

func TestLoessReproducesLine(t *testing.T) {
	n := 20
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i) / float64(n-1)
		y[i] = 2 + 3*x[i]
	}

	loess, err := NewLoess(0.5)
	if err != nil {
		t.Fatalf("NewLoess failed: %v", err)
	}

	smoothed, err := loess.Smooth(x, y)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	// Local linear fits reproduce a line exactly at every span
	for i := 0; i < n; i++ {
		if math.Abs(smoothed[i]-y[i]) > 1e-8 {
			t.Errorf("point %d: smoothed %f, want %f", i, smoothed[i], y[i])
		}
	}
}

func TestLoessReducesNoise(t *testing.T) {
	n := 30
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i) / float64(n-1)
		// Line plus deterministic high-frequency wiggle
		y[i] = 1 + x[i] + 0.3*math.Sin(float64(i)*2.7)
	}

	loess, err := NewLoess(0.75)
	if err != nil {
		t.Fatalf("NewLoess failed: %v", err)
	}

	smoothed, err := loess.Smooth(x, y)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	rawDev := 0.0
	smoothDev := 0.0
	for i := 0; i < n; i++ {
		trend := 1 + x[i]
		rawDev += (y[i] - trend) * (y[i] - trend)
		smoothDev += (smoothed[i] - trend) * (smoothed[i] - trend)
	}

	if smoothDev >= rawDev {
		t.Errorf("smoothing did not reduce deviation: %f >= %f", smoothDev, rawDev)
	}
}

func TestLoessValidation(t *testing.T) {
	if _, err := NewLoess(0); err == nil {
		t.Error("expected error for zero span")
	}
	if _, err := NewLoess(1.5); err == nil {
		t.Error("expected error for span above 1")
	}

	loess, _ := NewLoess(0.5)
	if _, err := loess.Smooth([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestCVLoessPassesThroughShortInput(t *testing.T) {
	cv := NewCVLoess()
	x := []float64{0.1, 0.5, 0.9}
	y := []float64{1, 7, 2}

	smoothed, err := cv.Smooth(x, y)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	for i := range y {
		if smoothed[i] != y[i] {
			t.Errorf("short input altered at %d: %f, want %f", i, smoothed[i], y[i])
		}
	}
}

func TestCVLoessReproducesLine(t *testing.T) {
	n := 15
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i+1) / float64(n+1)
		y[i] = 4 - 2*x[i]
	}

	cv := NewCVLoess()
	smoothed, err := cv.Smooth(x, y)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	for i := 0; i < n; i++ {
		if math.Abs(smoothed[i]-y[i]) > 1e-8 {
			t.Errorf("point %d: smoothed %f, want %f", i, smoothed[i], y[i])
		}
	}
}

func TestFisherZRoundTrip(t *testing.T) {
	for _, v := range []float64{-0.95, -0.5, 0, 0.3, 0.8} {
		back := InverseFisherZ(FisherZ(v))
		if math.Abs(back-v) > 1e-12 {
			t.Errorf("round trip of %f gave %f", v, back)
		}
	}

	// Values beyond the bound clamp instead of producing infinities
	if z := FisherZ(1.0); math.IsInf(z, 0) {
		t.Error("FisherZ(1) should clamp, not overflow")
	}
	if v := InverseFisherZ(100); v > pacfBound {
		t.Errorf("InverseFisherZ(100) = %f, want at most %f", v, pacfBound)
	}
}

func TestSmoothPACFStaysInStabilityRegion(t *testing.T) {
	taus := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	pacf := make([][]float64, len(taus))
	for level := range taus {
		// Two lags, one near the boundary
		pacf[level] = []float64{0.95 + 0.04*math.Sin(float64(level)), -0.3 + 0.1*float64(level)/8}
	}

	loess, _ := NewLoess(0.6)
	smoothed, err := SmoothPACF(loess, taus, pacf)
	if err != nil {
		t.Fatalf("SmoothPACF failed: %v", err)
	}

	if len(smoothed) != len(taus) {
		t.Fatalf("got %d levels, want %d", len(smoothed), len(taus))
	}
	for level := range smoothed {
		for lag, v := range smoothed[level] {
			if v <= -1 || v >= 1 {
				t.Errorf("smoothed pacf[%d][%d] = %f outside (-1, 1)", level, lag, v)
			}
		}
	}
}

func TestSmoothPACFValidation(t *testing.T) {
	loess, _ := NewLoess(0.6)

	if _, err := SmoothPACF(loess, []float64{0.5}, [][]float64{{0.1}, {0.2}}); err == nil {
		t.Error("expected error for level count mismatch")
	}
	if _, err := SmoothPACF(loess, []float64{0.25, 0.75}, [][]float64{{0.1, 0.2}, {0.3}}); err == nil {
		t.Error("expected error for ragged pacf matrix")
	}
}

func TestSmoothScaleFloorsAtZero(t *testing.T) {
	taus := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	scale := []float64{0.01, 0, 0.02, 0.01, 0, 0.01, 0.03, 0.02, 0.01}

	loess, _ := NewLoess(0.4)
	smoothed, err := SmoothScale(loess, taus, scale)
	if err != nil {
		t.Fatalf("SmoothScale failed: %v", err)
	}

	for i, v := range smoothed {
		if v < 0 {
			t.Errorf("smoothed scale[%d] = %f, want non-negative", i, v)
		}
	}
}

func TestNewSmootherFactory(t *testing.T) {
	if _, err := New(MethodLoess, 0.6); err != nil {
		t.Errorf("loess factory failed: %v", err)
	}
	if _, err := New(MethodLoessCV, 0); err != nil {
		t.Errorf("loess-cv factory failed: %v", err)
	}
	if _, err := New(Method(99), 0.5); err == nil {
		t.Error("expected error for unknown method")
	}
}
