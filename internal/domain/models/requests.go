package models

// TradeLogRequest is the dashboard query for recent cycle-log entries.
type TradeLogRequest struct {
	Limit    int    `query:"limit" default:"50" validate:"gte=1,lte=100"`
	Category string `query:"category" validate:"omitempty,oneof=info entry exit error"`
}
