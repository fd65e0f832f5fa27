package models

import "testing"

func TestNormalizeBar(t *testing.T) {
	vol := 1234.0
	c, err := NormalizeBar(RawBar{
		Timestamp: "2024-10-10T14:00:00Z",
		Open:      100, High: 101, Low: 99, Close: 100.5,
		Volume: &vol,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Time != 1728568800 {
		t.Fatalf("unexpected time %d", c.Time)
	}
	if c.Volume != 1234 {
		t.Fatalf("unexpected volume %v", c.Volume)
	}
}

func TestNormalizeBarMissingVolume(t *testing.T) {
	c, err := NormalizeBar(RawBar{Timestamp: "2024-10-10T14:00:00Z", Close: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Volume != 0 {
		t.Fatalf("missing volume must default to zero, got %v", c.Volume)
	}
}

func TestNormalizeBarBadTimestamp(t *testing.T) {
	if _, err := NormalizeBar(RawBar{Timestamp: "yesterday", Close: 100}); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}

func TestNormalizeBarsStopsOnError(t *testing.T) {
	bars := []RawBar{
		{Timestamp: "2024-10-10T14:00:00Z", Close: 100},
		{Timestamp: "", Close: 101},
	}
	if _, err := NormalizeBars(bars); err == nil {
		t.Fatalf("expected error to propagate")
	}
}

func TestPositionFlat(t *testing.T) {
	var p *Position
	if !p.Flat() {
		t.Fatalf("nil position must be flat")
	}
	if !(&Position{Side: SideNone}).Flat() {
		t.Fatalf("side none must be flat")
	}
	if !(&Position{Side: SideLong, Quantity: 0}).Flat() {
		t.Fatalf("zero quantity must be flat")
	}
	if (&Position{Side: SideShort, Quantity: 1}).Flat() {
		t.Fatalf("open short must not be flat")
	}
}
