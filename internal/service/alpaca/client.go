package alpaca

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"BandTrader/internal/domain/models"
	drepo "BandTrader/internal/domain/repository"
	"BandTrader/internal/service/ratelimit"
	xhttp "BandTrader/pkg/http"

	"github.com/google/uuid"
)

const (
	pageLimit    = 10000
	limiterKey   = "alpaca"
	limiterBurst = 10
)

// Client talks to an Alpaca-compatible REST broker. It implements both the
// MarketData and Trader contracts; every call passes the shared token-bucket
// limiter guarding the API quota.
type Client struct {
	baseURL      string
	dataURL      string
	keyID        string
	secretKey    string
	feed         string
	refillPerSec float64

	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithFeed selects the market-data feed (iex or sip).
func WithFeed(feed string) Option {
	return func(c *Client) { c.feed = feed }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// WithRateLimit sets the request quota in calls per minute.
func WithRateLimit(perMin float64) Option {
	return func(c *Client) { c.refillPerSec = perMin / 60 }
}

// NewClient creates a broker client.
func NewClient(baseURL, dataURL, keyID, secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		dataURL:      dataURL,
		keyID:        keyID,
		secretKey:    secretKey,
		feed:         "iex",
		refillPerSec: 200.0 / 60,
		http:         xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		limiter:      ratelimit.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"APCA-API-KEY-ID":     c.keyID,
		"APCA-API-SECRET-KEY": c.secretKey,
	}
}

// FetchPriceWindow returns intraday raw bars for [start, end] in ascending
// time order, following page tokens until the window is complete.
func (c *Client) FetchPriceWindow(ctx context.Context, symbol string, timeframe drepo.Timeframe, start, end int64) ([]models.RawBar, error) {
	return c.fetchBars(ctx, symbol, string(timeframe),
		time.Unix(start, 0).UTC().Format(time.RFC3339),
		time.Unix(end, 0).UTC().Format(time.RFC3339),
	)
}

// FetchDailyWindow returns up to lookback daily bars ending at endDate.
func (c *Client) FetchDailyWindow(ctx context.Context, symbol, endDate string, lookback int) ([]models.RawBar, error) {
	endT, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("daily window: bad end date %q: %w", endDate, err)
	}
	startT := endT.AddDate(0, 0, -lookback)
	return c.fetchBars(ctx, symbol, string(drepo.TF1Day),
		startT.Format(time.RFC3339),
		endT.Add(24*time.Hour-time.Second).Format(time.RFC3339),
	)
}

func (c *Client) fetchBars(ctx context.Context, symbol, timeframe, start, end string) ([]models.RawBar, error) {
	var out []models.RawBar
	var pageToken string

	for {
		if err := c.limiter.Wait(ctx, limiterKey, limiterBurst, c.refillPerSec); err != nil {
			return nil, err
		}

		params := map[string][]string{
			"timeframe":  {timeframe},
			"start":      {start},
			"end":        {end},
			"limit":      {strconv.Itoa(pageLimit)},
			"feed":       {c.feed},
			"adjustment": {"raw"},
		}
		if pageToken != "" {
			params["page_token"] = []string{pageToken}
		}

		var resp barsResponse
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         fmt.Sprintf("%s/v2/stocks/%s/bars", c.dataURL, symbol),
			Headers:     c.headers(),
			QueryParams: params,
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("fetch bars %s %s: %w", symbol, timeframe, err)
		}

		for _, b := range resp.Bars {
			vol := b.Volume
			out = append(out, models.RawBar{
				Timestamp: b.Timestamp,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    &vol,
			})
		}

		if resp.NextPageToken == nil || *resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = *resp.NextPageToken
	}
}

// GetPosition reads the current position snapshot. A 404 from the broker is
// the normal flat outcome and returns (nil, nil).
func (c *Client) GetPosition(ctx context.Context, symbol string) (*models.Position, error) {
	if err := c.limiter.Wait(ctx, limiterKey, limiterBurst, c.refillPerSec); err != nil {
		return nil, err
	}

	var wp wirePosition
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/v2/positions/%s", c.baseURL, symbol),
		Headers: c.headers(),
	}, &wp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get position %s: %w", symbol, err)
	}

	return parsePosition(wp)
}

func parsePosition(wp wirePosition) (*models.Position, error) {
	qty, err := strconv.ParseFloat(wp.Qty, 64)
	if err != nil {
		return nil, fmt.Errorf("parse position qty %q: %w", wp.Qty, err)
	}
	entry, err := strconv.ParseFloat(wp.AvgEntryPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse position entry %q: %w", wp.AvgEntryPrice, err)
	}
	// unrealized_pl is informational; tolerate a missing value
	pnl, _ := strconv.ParseFloat(wp.UnrealizedPL, 64)

	side := models.SideNone
	switch wp.Side {
	case "long":
		side = models.SideLong
	case "short":
		side = models.SideShort
	}

	return &models.Position{
		Side:          side,
		Quantity:      math.Abs(qty),
		AvgEntryPrice: entry,
		UnrealizedPnL: pnl,
	}, nil
}

// SubmitOrder places a market order and returns the broker's order ID.
func (c *Client) SubmitOrder(ctx context.Context, symbol string, qty float64, side models.PositionSide) (string, error) {
	if err := c.limiter.Wait(ctx, limiterKey, limiterBurst, c.refillPerSec); err != nil {
		return "", err
	}

	var orderSide string
	switch side {
	case models.SideLong:
		orderSide = "buy"
	case models.SideShort:
		orderSide = "sell"
	default:
		return "", fmt.Errorf("submit order: invalid side %q", side)
	}

	req := orderRequest{
		Symbol:        symbol,
		Qty:           strconv.FormatFloat(qty, 'f', -1, 64),
		Side:          orderSide,
		Type:          "market",
		TimeInForce:   "day",
		ClientOrderID: uuid.NewString(),
	}

	var resp orderResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     fmt.Sprintf("%s/v2/orders", c.baseURL),
		Headers: c.headers(),
		Body:    req,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("submit order %s %s: %w", symbol, orderSide, err)
	}
	return resp.ID, nil
}

// ClosePosition liquidates the whole position and returns the closing
// order's ID.
func (c *Client) ClosePosition(ctx context.Context, symbol string) (string, error) {
	if err := c.limiter.Wait(ctx, limiterKey, limiterBurst, c.refillPerSec); err != nil {
		return "", err
	}

	var resp orderResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodDelete,
		URL:     fmt.Sprintf("%s/v2/positions/%s", c.baseURL, symbol),
		Headers: c.headers(),
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("close position %s: %w", symbol, err)
	}
	return resp.ID, nil
}

var (
	_ drepo.MarketData = (*Client)(nil)
	_ drepo.Trader     = (*Client)(nil)
)
