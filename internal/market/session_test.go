package market

import (
	"testing"
	"time"
)

func nyTime(y int, m time.Month, d, hh, mm int) int64 {
	return time.Date(y, m, d, hh, mm, 0, 0, Location()).Unix()
}

func TestClassifyRegular(t *testing.T) {
	if got := Classify(nyTime(2024, time.October, 10, 9, 30)); got != Regular {
		t.Fatalf("expected regular at open, got %s", got)
	}
	if got := Classify(nyTime(2024, time.October, 10, 15, 59)); got != Regular {
		t.Fatalf("expected regular before close, got %s", got)
	}
}

func TestClassifyPremarket(t *testing.T) {
	if got := Classify(nyTime(2024, time.October, 10, 4, 0)); got != Premarket {
		t.Fatalf("expected premarket at 04:00, got %s", got)
	}
	if got := Classify(nyTime(2024, time.October, 10, 9, 29)); got != Premarket {
		t.Fatalf("expected premarket at 09:29, got %s", got)
	}
}

func TestClassifyAfterHours(t *testing.T) {
	if got := Classify(nyTime(2024, time.October, 10, 16, 0)); got != AfterHours {
		t.Fatalf("expected afterhours at close, got %s", got)
	}
	if got := Classify(nyTime(2024, time.October, 10, 3, 59)); got != AfterHours {
		t.Fatalf("expected afterhours before 04:00, got %s", got)
	}
	if got := Classify(nyTime(2024, time.October, 10, 0, 0)); got != AfterHours {
		t.Fatalf("expected afterhours at midnight, got %s", got)
	}
}

// The open is 09:30 local regardless of the UTC offset in force.
func TestClassifyAcrossDST(t *testing.T) {
	summer := nyTime(2024, time.July, 10, 9, 30) // EDT, UTC-4
	winter := nyTime(2024, time.December, 10, 9, 30) // EST, UTC-5
	if got := Classify(summer); got != Regular {
		t.Fatalf("summer open misclassified: %s", got)
	}
	if got := Classify(winter); got != Regular {
		t.Fatalf("winter open misclassified: %s", got)
	}
	if summer%86400 == winter%86400 {
		t.Fatalf("expected different UTC offsets across DST")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	ts := nyTime(2024, time.October, 10, 12, 0)
	first := Classify(ts)
	for i := 0; i < 10; i++ {
		if got := Classify(ts); got != first {
			t.Fatalf("classification changed between calls")
		}
	}
}

func TestTradingDateOf(t *testing.T) {
	// 2024-10-11 01:00 UTC is still 2024-10-10 in New York
	ts := time.Date(2024, time.October, 11, 1, 0, 0, 0, time.UTC).Unix()
	if got := TradingDateOf(ts); got != "2024-10-10" {
		t.Fatalf("unexpected trading date %s", got)
	}
}
