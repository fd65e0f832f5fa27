package alpaca

// Wire types for the broker's REST API. Numeric position and order fields
// arrive as strings and are parsed at the boundary.

type barsResponse struct {
	Bars          []wireBar `json:"bars"`
	Symbol        string    `json:"symbol"`
	NextPageToken *string   `json:"next_page_token"`
}

type wireBar struct {
	Timestamp string  `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

type wirePosition struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side"` // "long" | "short"
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
	UnrealizedPL  string `json:"unrealized_pl"`
}

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"` // "buy" | "sell"
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	ClientOrderID string `json:"client_order_id"`
}

type orderResponse struct {
	ID string `json:"id"`
}
