package usecase

import (
	"context"
	"errors"
	"time"

	"BandTrader/internal/domain/models"
	drepo "BandTrader/internal/domain/repository"
	"BandTrader/internal/market"
	"BandTrader/pkg/cache"
	"BandTrader/pkg/logger"
	"BandTrader/pkg/util"
)

const (
	// Completed days never change, so their entries carry no TTL; the memory
	// backend bounds retention by LRU capacity and Redis persists them.
	historicalWindowTTL = time.Duration(0)
	currentWindowTTL    = 2 * time.Minute
)

// WindowStore serves normalized candle windows with day-granular caching.
// Completed trading days are immutable, so their keys live long; the current
// day's key is deleted before every fetch so in-progress bars never go stale.
type WindowStore struct {
	data  drepo.MarketData
	cache cache.Service
	log   *logger.Logger
}

// NewWindowStore creates a WindowStore.
func NewWindowStore(data drepo.MarketData, c cache.Service, log *logger.Logger) *WindowStore {
	return &WindowStore{data: data, cache: c, log: log}
}

// HistoricalWindow returns the candles of one completed trading date
// (YYYY-MM-DD, exchange time), cache-first.
func (s *WindowStore) HistoricalWindow(ctx context.Context, symbol string, tf drepo.Timeframe, date string) ([]models.Candle, error) {
	start, end, ok := util.DateBounds(date, market.Location())
	if !ok {
		return nil, errors.New("window: malformed date " + date)
	}
	key := cache.WindowKey(symbol, string(tf), start, end)

	var cached []models.Candle
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// a broken cache must not break the cycle
		s.log.Warn("window cache read failed", logger.String("key", key), logger.Error(err))
	}

	candles, err := s.fetch(ctx, symbol, tf, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, candles, historicalWindowTTL); err != nil {
		s.log.Warn("window cache write failed", logger.String("key", key), logger.Error(err))
	}
	return candles, nil
}

// CurrentWindow returns today's candles from the day's open through now. The
// cache key is invalidated first, so every call observes fresh bars; the
// fresh result is written back for read-only consumers like the dashboard.
func (s *WindowStore) CurrentWindow(ctx context.Context, symbol string, tf drepo.Timeframe, now time.Time) ([]models.Candle, error) {
	dayStart, dayEnd := util.DayBounds(now, market.Location())
	key := cache.WindowKey(symbol, string(tf), dayStart, dayEnd)

	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("window cache invalidate failed", logger.String("key", key), logger.Error(err))
	}

	candles, err := s.fetch(ctx, symbol, tf, dayStart, now.Unix())
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, candles, currentWindowTTL); err != nil {
		s.log.Warn("window cache write failed", logger.String("key", key), logger.Error(err))
	}
	return candles, nil
}

func (s *WindowStore) fetch(ctx context.Context, symbol string, tf drepo.Timeframe, start, end int64) ([]models.Candle, error) {
	raw, err := s.data.FetchPriceWindow(ctx, symbol, tf, start, end)
	if err != nil {
		return nil, err
	}
	return models.NormalizeBars(raw)
}
