package repository

// Timeframe represents candle resolution buckets as the data API names them.
type Timeframe string

const (
	TF1Min  Timeframe = "1Min"
	TF5Min  Timeframe = "5Min"
	TF15Min Timeframe = "15Min"
	TF1Day  Timeframe = "1Day"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1Min, TF5Min, TF15Min, TF1Day:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default intraday timeframe.
func DefaultTimeframe() Timeframe { return TF5Min }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}
