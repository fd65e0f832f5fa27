package market

import (
	"math"

	"BandTrader/internal/domain/models"
)

// Regression defaults.
const (
	// regressionEpsilon guards the normal-equation denominator.
	regressionEpsilon = 1e-12
	// DefaultMinSigma is the smallest residual deviation that still carries
	// signal; below it the band collapses to the line and is unusable.
	DefaultMinSigma = 0.001
	// DefaultBandMultiplier widens the band around the fitted line.
	DefaultBandMultiplier = 2.5
)

// Regression is a least-squares line fit of close price against time,
// with the time axis shifted so the first candle is the origin. Raw epoch
// seconds are large enough to lose float precision without the shift.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Sigma     float64 `json:"sigma"` // population stddev of residuals
	X0        int64   `json:"x0"`    // time origin (first candle)
}

// Fit runs ordinary least squares over the candle sequence. Degenerate
// input (fewer than 2 candles or a near-singular design matrix) yields
// the zero-valued empty result so callers can uniformly gate on
// Usable(minSigma) without a separate error path.
func Fit(candles []models.Candle) Regression {
	n := len(candles)
	if n < 2 {
		return Regression{}
	}

	x0 := candles[0].Time
	var sumX, sumY, sumXY, sumXX float64
	for _, c := range candles {
		x := float64(c.Time - x0)
		y := c.Close
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if math.Abs(denom) < regressionEpsilon {
		return Regression{}
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	var ss float64
	for _, c := range candles {
		fitted := intercept + slope*float64(c.Time-x0)
		r := c.Close - fitted
		ss += r * r
	}
	sigma := math.Sqrt(ss / fn)

	return Regression{Slope: slope, Intercept: intercept, Sigma: sigma, X0: x0}
}

// ValueAt evaluates the fitted line at unix time t.
func (r Regression) ValueAt(t int64) float64 {
	return r.Intercept + r.Slope*float64(t-r.X0)
}

// Bands returns the upper and lower band edges at unix time t.
func (r Regression) Bands(t int64, multiplier float64) (upper, lower float64) {
	fitted := r.ValueAt(t)
	offset := multiplier * r.Sigma
	return fitted + offset, fitted - offset
}

// Usable reports whether the fit carries enough dispersion to act on.
func (r Regression) Usable(minSigma float64) bool {
	return r.Sigma >= minSigma
}
