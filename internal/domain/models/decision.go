package models

// DecisionKind enumerates the possible outcomes of one evaluation cycle.
// At most one fires per cycle.
type DecisionKind string

const (
	ExitStop            DecisionKind = "exit_stop"
	ExitRegressionTouch DecisionKind = "exit_regression_touch"
	EnterLong           DecisionKind = "enter_long"
	EnterShort          DecisionKind = "enter_short"
	NoAction            DecisionKind = "no_action"
)

// Decision is the result of evaluating one candle against the regression
// band and the current position snapshot. It carries the triggering level
// and the band values for audit logging. Computed fresh every cycle, never
// persisted.
type Decision struct {
	Kind      DecisionKind `json:"kind"`
	Symbol    string       `json:"symbol"`
	Trigger   float64      `json:"trigger"` // price level that fired, 0 for NoAction
	Fitted    float64      `json:"fitted"`
	UpperBand float64      `json:"upper_band"`
	LowerBand float64      `json:"lower_band"`
	Sigma     float64      `json:"sigma"`
	Reason    string       `json:"reason,omitempty"`
}

// Actionable reports whether the decision requires an order.
func (d Decision) Actionable() bool {
	return d.Kind != NoAction
}

// IsExit reports whether the decision closes an open position.
func (d Decision) IsExit() bool {
	return d.Kind == ExitStop || d.Kind == ExitRegressionTouch
}
