package market

import (
	"math"
	"testing"

	"BandTrader/internal/domain/models"
)

func closesAt(t0 int64, step int64, closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Time: t0 + int64(i)*step, Close: c}
	}
	return out
}

func TestFitPerfectLine(t *testing.T) {
	// closes 10, 20, 30 at 60s spacing: exact fit, zero residual
	r := Fit(closesAt(1000, 60, 10, 20, 30))

	if math.Abs(r.Slope-1.0/6) > 1e-12 {
		t.Fatalf("unexpected slope %v", r.Slope)
	}
	if math.Abs(r.Intercept-10) > 1e-9 {
		t.Fatalf("unexpected intercept %v", r.Intercept)
	}
	if r.Sigma != 0 {
		t.Fatalf("expected zero sigma, got %v", r.Sigma)
	}
	if got := r.ValueAt(1180); math.Abs(got-40) > 1e-9 {
		t.Fatalf("unexpected extrapolation %v", got)
	}
	if r.Usable(DefaultMinSigma) {
		t.Fatalf("zero-sigma fit must be unusable")
	}
}

func TestFitResiduals(t *testing.T) {
	// closes 10, 30, 20: slope 1/12, intercept 15, sigma sqrt(50)
	r := Fit(closesAt(0, 60, 10, 30, 20))

	if math.Abs(r.Slope-1.0/12) > 1e-12 {
		t.Fatalf("unexpected slope %v", r.Slope)
	}
	if math.Abs(r.Intercept-15) > 1e-9 {
		t.Fatalf("unexpected intercept %v", r.Intercept)
	}
	if math.Abs(r.Sigma-math.Sqrt(50)) > 1e-9 {
		t.Fatalf("unexpected sigma %v", r.Sigma)
	}

	upper, lower := r.Bands(60, 2)
	fitted := r.ValueAt(60)
	if math.Abs(upper-(fitted+2*r.Sigma)) > 1e-9 || math.Abs(lower-(fitted-2*r.Sigma)) > 1e-9 {
		t.Fatalf("bands not symmetric: %v %v around %v", upper, lower, fitted)
	}
	if !r.Usable(DefaultMinSigma) {
		t.Fatalf("expected usable fit")
	}
}

func TestFitDegenerate(t *testing.T) {
	if r := Fit(nil); r != (Regression{}) {
		t.Fatalf("expected empty fit for nil input")
	}
	if r := Fit(closesAt(1000, 60, 10)); r != (Regression{}) {
		t.Fatalf("expected empty fit for single candle")
	}
	// all candles at the same instant: singular design matrix
	same := []models.Candle{{Time: 1000, Close: 10}, {Time: 1000, Close: 20}}
	if r := Fit(same); r != (Regression{}) {
		t.Fatalf("expected empty fit for singular input")
	}
}

// Shifting the series in time must not change the fit shape; raw epoch
// x-values would lose precision without the origin shift.
func TestFitTimeOriginInvariance(t *testing.T) {
	a := Fit(closesAt(0, 60, 10, 30, 20))
	b := Fit(closesAt(1_700_000_000, 60, 10, 30, 20))

	if math.Abs(a.Slope-b.Slope) > 1e-12 {
		t.Fatalf("slope drifted: %v vs %v", a.Slope, b.Slope)
	}
	if math.Abs(a.Sigma-b.Sigma) > 1e-9 {
		t.Fatalf("sigma drifted: %v vs %v", a.Sigma, b.Sigma)
	}
	if math.Abs(a.ValueAt(60)-b.ValueAt(1_700_000_060)) > 1e-6 {
		t.Fatalf("fitted value drifted")
	}
}
