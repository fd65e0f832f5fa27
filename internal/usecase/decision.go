package usecase

import (
	"fmt"

	"BandTrader/internal/domain/models"
	"BandTrader/internal/market"
)

// EvaluateParams bundles the per-cycle inputs to the decision function.
type EvaluateParams struct {
	Symbol     string
	Candle     models.Candle
	Fit        market.Regression
	Multiplier float64
	StopLoss   float64 // fraction, e.g. 0.05
	MinSigma   float64
	Position   *models.Position // nil means flat
}

// Evaluate maps one classified market condition plus an external position
// snapshot to at most one trading action. It is a pure function: all state
// lives in the broker's position, which is the single source of truth.
//
// Evaluation order, first match wins:
//  1. open LONG: hard stop, then regression-touch exit
//  2. open SHORT: hard stop, then regression-touch exit
//  3. flat only: band-touch entries
//
// Stop-loss outranks the regression touch because capital protection must
// dominate mean-reversion logic, and an exit suppresses any entry in the
// same cycle so a position fully closes before a new one opens.
func Evaluate(p EvaluateParams) models.Decision {
	fitted := p.Fit.ValueAt(p.Candle.Time)
	upper, lower := p.Fit.Bands(p.Candle.Time, p.Multiplier)

	d := models.Decision{
		Kind:      models.NoAction,
		Symbol:    p.Symbol,
		Fitted:    fitted,
		UpperBand: upper,
		LowerBand: lower,
		Sigma:     p.Fit.Sigma,
	}

	if !p.Fit.Usable(p.MinSigma) {
		// Insufficient price dispersion makes the bands meaningless,
		// not merely risky: skip the whole decision step.
		d.Reason = fmt.Sprintf("sigma %.6f below minimum %.6f", p.Fit.Sigma, p.MinSigma)
		return d
	}

	pos := p.Position
	if !pos.Flat() {
		switch pos.Side {
		case models.SideLong:
			stop := pos.AvgEntryPrice * (1 - p.StopLoss)
			if p.Candle.Low <= stop {
				d.Kind = models.ExitStop
				d.Trigger = stop
				d.Reason = fmt.Sprintf("long stop: low %.2f <= stop %.2f", p.Candle.Low, stop)
				return d
			}
			if p.Candle.High >= fitted {
				d.Kind = models.ExitRegressionTouch
				d.Trigger = fitted
				d.Reason = fmt.Sprintf("long touch: high %.2f >= fitted %.2f", p.Candle.High, fitted)
				return d
			}
		case models.SideShort:
			stop := pos.AvgEntryPrice * (1 + p.StopLoss)
			if p.Candle.High >= stop {
				d.Kind = models.ExitStop
				d.Trigger = stop
				d.Reason = fmt.Sprintf("short stop: high %.2f >= stop %.2f", p.Candle.High, stop)
				return d
			}
			if p.Candle.Low <= fitted {
				d.Kind = models.ExitRegressionTouch
				d.Trigger = fitted
				d.Reason = fmt.Sprintf("short touch: low %.2f <= fitted %.2f", p.Candle.Low, fitted)
				return d
			}
		}
		// Holding with no exit condition: never pyramid or reverse.
		d.Reason = "holding"
		return d
	}

	if p.Candle.High >= upper {
		d.Kind = models.EnterShort
		d.Trigger = upper
		d.Reason = fmt.Sprintf("band touch: high %.2f >= upper %.2f", p.Candle.High, upper)
		return d
	}
	if p.Candle.Low <= lower {
		d.Kind = models.EnterLong
		d.Trigger = lower
		d.Reason = fmt.Sprintf("band touch: low %.2f <= lower %.2f", p.Candle.Low, lower)
		return d
	}

	d.Reason = "inside band"
	return d
}
