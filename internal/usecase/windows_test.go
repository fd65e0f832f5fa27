package usecase

import (
	"context"
	"testing"

	drepo "BandTrader/internal/domain/repository"
	"BandTrader/pkg/cache"
	"BandTrader/pkg/logger"
)

func newTestWindowStore(t *testing.T, data *fakeMarketData) *WindowStore {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewWindowStore(data, cache.NewMemoryCache(), log)
}

func TestHistoricalWindowCached(t *testing.T) {
	data := &fakeMarketData{}
	s := newTestWindowStore(t, data)
	ctx := context.Background()

	first, err := s.HistoricalWindow(ctx, "SPY", drepo.TF5Min, "2024-10-09")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := s.HistoricalWindow(ctx, "SPY", drepo.TF5Min, "2024-10-09")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if data.intradayCalls != 1 {
		t.Fatalf("completed day must be served from cache, got %d fetches", data.intradayCalls)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Fatalf("cached window differs from fetched window")
	}
}

func TestHistoricalWindowMalformedDate(t *testing.T) {
	s := newTestWindowStore(t, &fakeMarketData{})
	if _, err := s.HistoricalWindow(context.Background(), "SPY", drepo.TF5Min, "10/09/2024"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestCurrentWindowAlwaysRefetches(t *testing.T) {
	data := &fakeMarketData{now: testClock().Unix()}
	s := newTestWindowStore(t, data)
	ctx := context.Background()

	if _, err := s.CurrentWindow(ctx, "SPY", drepo.TF5Min, testClock()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := s.CurrentWindow(ctx, "SPY", drepo.TF5Min, testClock()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if data.intradayCalls != 2 {
		t.Fatalf("current day must never be served stale, got %d fetches", data.intradayCalls)
	}
}
