package models

// Trade is one last-trade tick from the market quote stream. Presentation
// state only; the decision cycle never consumes it.
type Trade struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"p"`
	Volume    float64 `json:"v"`
}
