package regression

import (
	"math"
	"testing"
)

// sinusoid generates a*cos + b*sin at a Fourier frequency plus an offset
func sinusoid(n int, freq, a, b, offset float64) []float64 {
	series := make([]float64, n)
	for t := 0; t < n; t++ {
		angle := 2 * math.Pi * freq * float64(t+1)
		series[t] = offset + a*math.Cos(angle) + b*math.Sin(angle)
	}
	return series
}

func TestFitGaussianRecoversSinusoid(t *testing.T) {
	n := 100
	freq := 10.0 / float64(n)
	series := sinusoid(n, freq, 2, 1, 0.5)

	fitter := NewHarmonicFitter(true)
	fit := fitter.FitGaussian(series, freq, nil)

	if fit.Degraded {
		t.Fatal("clean fit should not degrade")
	}
	if math.Abs(fit.Cos-2) > 1e-8 {
		t.Errorf("cos coefficient = %f, want 2", fit.Cos)
	}
	if math.Abs(fit.Sin-1) > 1e-8 {
		t.Errorf("sin coefficient = %f, want 1", fit.Sin)
	}
	if math.Abs(fit.Intercept-0.5) > 1e-8 {
		t.Errorf("intercept = %f, want 0.5", fit.Intercept)
	}
}

func TestFitQuantileMedianRecoversSinusoid(t *testing.T) {
	n := 100
	freq := 10.0 / float64(n)
	series := sinusoid(n, freq, 2, 1, 0)

	fitter := NewHarmonicFitter(true)
	fits := fitter.FitQuantile(series, freq, []float64{0.5}, nil)

	if len(fits) != 1 {
		t.Fatalf("got %d fits, want 1", len(fits))
	}
	// The noiseless sinusoid lies in the design span, so the median fit
	// interpolates it
	if math.Abs(fits[0].Cos-2) > 0.1 {
		t.Errorf("cos coefficient = %f, want about 2", fits[0].Cos)
	}
	if math.Abs(fits[0].Sin-1) > 0.1 {
		t.Errorf("sin coefficient = %f, want about 1", fits[0].Sin)
	}
}

func TestFitQuantileReturnsOneFitPerLevel(t *testing.T) {
	series := sinusoid(64, 8.0/64, 1, 0, 0)
	taus := []float64{0.1, 0.5, 0.9}

	fitter := NewHarmonicFitter(true)
	fits := fitter.FitQuantile(series, 8.0/64, taus, nil)

	if len(fits) != len(taus) {
		t.Fatalf("got %d fits for %d levels", len(fits), len(taus))
	}
}

func TestZeroFrequencyOnlyConstant(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}

	withIntercept := NewHarmonicFitter(true)
	fit := withIntercept.FitGaussian(series, 0, nil)
	if fit.Cos != 0 || fit.Sin != 0 {
		t.Errorf("harmonic coefficients at f=0 should be zero, got (%f, %f)", fit.Cos, fit.Sin)
	}
	if math.Abs(fit.Intercept-3) > 1e-12 {
		t.Errorf("intercept = %f, want the mean 3", fit.Intercept)
	}

	quantileFits := withIntercept.FitQuantile(series, 0, []float64{0.5}, nil)
	if quantileFits[0].Cos != 0 || quantileFits[0].Sin != 0 {
		t.Error("harmonic coefficients at f=0 should be zero for the quantile fit")
	}

	withoutIntercept := NewHarmonicFitter(false)
	bare := withoutIntercept.FitGaussian(series, 0, nil)
	if bare.Cos != 0 || bare.Sin != 0 || bare.Intercept != 0 {
		t.Error("all coefficients at f=0 should be zero without intercept")
	}
}

func TestNyquistSineForcedZero(t *testing.T) {
	n := 64
	series := sinusoid(n, 0.5, 1.5, 0, 0)

	fitter := NewHarmonicFitter(true)
	fit := fitter.FitGaussian(series, 0.5, nil)

	if fit.Sin != 0 {
		t.Errorf("sin coefficient at Nyquist = %f, want exactly 0", fit.Sin)
	}
	if math.Abs(fit.Cos-1.5) > 1e-8 {
		t.Errorf("cos coefficient at Nyquist = %f, want 1.5", fit.Cos)
	}
}

func TestQuantileCostsPeakAtSignalFrequency(t *testing.T) {
	n := 100
	signalFreq := 10.0 / float64(n)
	farFreq := 37.0 / float64(n)
	series := sinusoid(n, signalFreq, 2, 0, 0)

	fitter := NewHarmonicFitter(true)
	atSignal := fitter.QuantileCosts(series, signalFreq, []float64{0.5}, nil)
	atFar := fitter.QuantileCosts(series, farFreq, []float64{0.5}, nil)

	if atSignal[0].Cost <= atFar[0].Cost {
		t.Errorf("cost at signal frequency (%f) should exceed cost far away (%f)",
			atSignal[0].Cost, atFar[0].Cost)
	}
	if atSignal[0].Cost <= 0 {
		t.Errorf("cost at signal frequency = %f, want positive", atSignal[0].Cost)
	}
}

func TestQuantileCostsZeroFrequency(t *testing.T) {
	fitter := NewHarmonicFitter(true)
	costs := fitter.QuantileCosts([]float64{1, 2, 3}, 0, []float64{0.5}, nil)
	if costs[0].Cost != 0 {
		t.Errorf("cost at f=0 = %f, want 0", costs[0].Cost)
	}
}
