package models

import (
	"fmt"

	"BandTrader/pkg/util"
)

// Candle is one normalized price bar. Immutable once built; sequences are
// ordered by Time ascending with unique timestamps.
type Candle struct {
	Time   int64   `json:"t"` // unix seconds, truncated
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// RawBar is a price bar as returned by the market-data collaborator before
// normalization. Timestamp accepts RFC3339 or unix seconds; Volume may be
// absent.
type RawBar struct {
	Timestamp string   `json:"t"`
	Open      float64  `json:"o"`
	High      float64  `json:"h"`
	Low       float64  `json:"l"`
	Close     float64  `json:"c"`
	Volume    *float64 `json:"v,omitempty"`
}

// NormalizeBar converts a raw bar into a Candle. The timestamp is truncated
// to whole seconds and a missing volume defaults to zero. A malformed
// timestamp is a data error, never silently coerced.
func NormalizeBar(b RawBar) (Candle, error) {
	t, ok := util.ParseTime(b.Timestamp)
	if !ok {
		return Candle{}, fmt.Errorf("normalize bar: bad timestamp %q", b.Timestamp)
	}
	var vol float64
	if b.Volume != nil {
		vol = *b.Volume
	}
	return Candle{
		Time:   t.Unix(),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: vol,
	}, nil
}

// NormalizeBars converts a slice of raw bars, preserving order.
func NormalizeBars(bars []RawBar) ([]Candle, error) {
	out := make([]Candle, 0, len(bars))
	for _, b := range bars {
		c, err := NormalizeBar(b)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
