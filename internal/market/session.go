package market

import (
	"time"
)

// SessionPhase is the trading-session phase for a point in time.
type SessionPhase string

const (
	Premarket  SessionPhase = "premarket"
	Regular    SessionPhase = "regular"
	AfterHours SessionPhase = "afterhours"
)

// Session boundaries in minutes since midnight, US equity calendar.
const (
	premarketOpenMin = 4 * 60          // 04:00
	regularOpenMin   = 9*60 + 30       // 09:30
	regularCloseMin  = 16 * 60         // 16:00
)

var nyLoc *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata missing on the host is a deployment defect; fail loudly.
		panic("market: load America/New_York: " + err.Error())
	}
	nyLoc = loc
}

// Classify maps a unix timestamp to its session phase. The conversion uses
// the IANA zone so daylight-saving transitions classify correctly. Pure and
// total over valid timestamps; holidays are not its concern, an empty bar
// window is the holiday signal upstream.
func Classify(unixSec int64) SessionPhase {
	t := time.Unix(unixSec, 0).In(nyLoc)
	hour := t.Hour()
	if hour == 24 {
		hour = 0 // midnight wrap
	}
	minutes := hour*60 + t.Minute()

	switch {
	case minutes >= premarketOpenMin && minutes < regularOpenMin:
		return Premarket
	case minutes >= regularOpenMin && minutes < regularCloseMin:
		return Regular
	default:
		return AfterHours
	}
}

// TradingDateOf formats the unix timestamp as the session's trading date
// (YYYY-MM-DD in New York).
func TradingDateOf(unixSec int64) string {
	return time.Unix(unixSec, 0).In(nyLoc).Format("2006-01-02")
}

// Location exposes the exchange time zone for window construction.
func Location() *time.Location { return nyLoc }
