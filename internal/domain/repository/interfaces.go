package repository

import (
	"context"

	"BandTrader/internal/domain/models"
)

// MarketData retrieves price windows from the broker's data API. Bars come
// back in ascending time order with pagination handled transparently.
type MarketData interface {
	// FetchPriceWindow returns intraday raw bars for [start, end] (unix seconds).
	FetchPriceWindow(ctx context.Context, symbol string, timeframe Timeframe, start, end int64) ([]models.RawBar, error)
	// FetchDailyWindow returns up to lookback daily bars ending at endDate (YYYY-MM-DD).
	FetchDailyWindow(ctx context.Context, symbol, endDate string, lookback int) ([]models.RawBar, error)
}

// Trader submits orders and reads position snapshots. GetPosition returning
// (nil, nil) is the normal flat outcome, not an error.
type Trader interface {
	GetPosition(ctx context.Context, symbol string) (*models.Position, error)
	SubmitOrder(ctx context.Context, symbol string, qty float64, side models.PositionSide) (string, error)
	ClosePosition(ctx context.Context, symbol string) (string, error)
}

// QuoteStream feeds last-trade ticks for the dashboard.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits one decision-outcome event per cycle. Implementations may
// be nil-safe no-ops when eventing is disabled.
type Publisher interface {
	PublishDecision(ctx context.Context, d models.Decision) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordCycle(outcome string)
	RecordDecision(kind string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordCycleDuration(seconds float64)
}
