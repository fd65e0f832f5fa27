package market

import (
	"math"

	"BandTrader/internal/domain/models"
)

// PriorTradingDates walks a date-ascending daily candle series backward and
// collects up to n distinct trading dates strictly before refDate
// (YYYY-MM-DD), most-recent-first. Fewer than 2 daily bars is too short a
// lookback to trust, so it returns nil; callers should fetch
// LookbackCalendarDays(n) of dailies to absorb weekends and holidays.
func PriorTradingDates(daily []models.Candle, refDate string, n int) []string {
	if len(daily) < 2 || n <= 0 {
		return nil
	}

	dates := make([]string, 0, n)
	var last string
	for i := len(daily) - 1; i >= 0 && len(dates) < n; i-- {
		d := TradingDateOf(daily[i].Time)
		if d >= refDate {
			continue
		}
		if d == last {
			continue
		}
		dates = append(dates, d)
		last = d
	}
	return dates
}

// LookbackCalendarDays converts a count of trading days into the calendar
// span to request, padding for weekends and holidays.
func LookbackCalendarDays(tradingDays int) int {
	return int(math.Ceil(float64(tradingDays) * 1.6))
}
