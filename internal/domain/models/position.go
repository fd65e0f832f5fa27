package models

// PositionSide is the direction of an externally-held position.
type PositionSide string

const (
	SideLong  PositionSide = "long"
	SideShort PositionSide = "short"
	SideNone  PositionSide = "none"
)

// Position is a snapshot of the broker-held position for one symbol. The
// broker owns and mutates it; the engine only reads one snapshot per cycle
// and never caches it across cycles, so externally-placed or -closed trades
// cannot drift out of view.
type Position struct {
	Side          PositionSide `json:"side"`
	Quantity      float64      `json:"qty"`
	AvgEntryPrice float64      `json:"avg_entry_price"`
	UnrealizedPnL float64      `json:"unrealized_pl"`
}

// Flat reports whether the snapshot holds no position. A nil snapshot (the
// broker returned "no position") is flat.
func (p *Position) Flat() bool {
	return p == nil || p.Side == SideNone || p.Quantity == 0
}
