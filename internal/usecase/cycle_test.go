package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"BandTrader/internal/domain/models"
	drepo "BandTrader/internal/domain/repository"
	"BandTrader/internal/market"
	"BandTrader/pkg/cache"
	"BandTrader/pkg/logger"
)

// --- fakes ---

type fakeMarketData struct {
	mu            sync.Mutex
	now           int64 // unix of the test clock; marks the current-day fetch
	dailyCalls    int
	intradayCalls int
	lastBarLow    float64 // overrides the low of the final current-day bar
	dailyErr      error

	blockDaily chan struct{} // when non-nil, FetchDailyWindow waits here
	entered    chan struct{}
}

func rfc3339(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func (f *fakeMarketData) FetchDailyWindow(ctx context.Context, symbol, endDate string, lookback int) ([]models.RawBar, error) {
	f.mu.Lock()
	f.dailyCalls++
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.blockDaily != nil {
		<-f.blockDaily
	}
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}

	loc := market.Location()
	var bars []models.RawBar
	for _, d := range []string{"2024-10-08", "2024-10-09"} {
		day, _ := time.ParseInLocation("2006-01-02", d, loc)
		bars = append(bars, models.RawBar{
			Timestamp: rfc3339(day.Add(12 * time.Hour).Unix()),
			Open:      100, High: 101, Low: 99, Close: 100,
		})
	}
	return bars, nil
}

func (f *fakeMarketData) FetchPriceWindow(ctx context.Context, symbol string, tf drepo.Timeframe, start, end int64) ([]models.RawBar, error) {
	f.mu.Lock()
	f.intradayCalls++
	f.mu.Unlock()

	closes := []float64{100, 101}
	bars := make([]models.RawBar, len(closes))
	for i, c := range closes {
		bars[i] = models.RawBar{
			Timestamp: rfc3339(start + int64(i+1)*3600),
			Open:      c, High: c + 0.1, Low: c - 0.1, Close: c,
		}
	}
	if end == f.now && f.lastBarLow != 0 {
		bars[len(bars)-1].Low = f.lastBarLow
	}
	return bars, nil
}

type fakeTrader struct {
	mu      sync.Mutex
	pos     *models.Position
	posErr  error
	submits []models.PositionSide
	closes  int
}

func (f *fakeTrader) GetPosition(ctx context.Context, symbol string) (*models.Position, error) {
	return f.pos, f.posErr
}

func (f *fakeTrader) SubmitOrder(ctx context.Context, symbol string, qty float64, side models.PositionSide) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, side)
	return "order-1", nil
}

func (f *fakeTrader) ClosePosition(ctx context.Context, symbol string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return "order-2", nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []models.Decision
}

func (f *fakePublisher) PublishDecision(ctx context.Context, d models.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, d)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu     sync.Mutex
	cycles []string
}

func (f *fakeMetrics) RecordCycle(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycles = append(f.cycles, outcome)
}

func (f *fakeMetrics) RecordDecision(kind string)               {}
func (f *fakeMetrics) RecordError(kind string)                  {}
func (f *fakeMetrics) RecordLastPrice(symbol string, p float64) {}
func (f *fakeMetrics) RecordCycleDuration(seconds float64)      {}

func (f *fakeMetrics) outcomes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.cycles))
	copy(out, f.cycles)
	return out
}

// --- harness ---

func testClock() time.Time {
	return time.Date(2024, time.October, 10, 14, 0, 0, 0, market.Location())
}

func newTestRunner(t *testing.T, data *fakeMarketData, trader *fakeTrader) (*Runner, *fakeMetrics, *fakePublisher) {
	t.Helper()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	data.now = testClock().Unix()
	metrics := &fakeMetrics{}
	events := &fakePublisher{}
	windows := NewWindowStore(data, cache.NewMemoryCache(), log)

	r := NewRunner(
		RunnerConfig{
			Symbol:         "SPY",
			Timeframe:      drepo.TF5Min,
			WindowDays:     2,
			BandMultiplier: 2.5,
			StopLossPct:    0.05,
			MinSigma:       0.001,
			OrderQty:       1,
			Sessions:       []string{"regular"},
		},
		windows, data, trader, events, metrics, models.NewTradeLog(100), log,
	)
	r.now = testClock
	return r, metrics, events
}

// --- tests ---

func TestRunCycleInsideBand(t *testing.T) {
	data := &fakeMarketData{}
	trader := &fakeTrader{}
	r, metrics, events := newTestRunner(t, data, trader)

	r.RunCycle(context.Background())

	if got := metrics.outcomes(); len(got) != 1 || got[0] != OutcomeOK {
		t.Fatalf("expected [ok], got %v", got)
	}
	if n := r.TradeLog().Len(); n != 1 {
		t.Fatalf("expected exactly one trade log entry, got %d", n)
	}
	if len(trader.submits) != 0 || trader.closes != 0 {
		t.Fatalf("no orders expected inside the band")
	}
	if len(events.published) != 1 {
		t.Fatalf("expected one published decision, got %d", len(events.published))
	}
	if events.published[0].Kind != models.NoAction {
		t.Fatalf("expected no_action event, got %s", events.published[0].Kind)
	}

	snap := r.Snapshot()
	if snap.LastDecision.Kind != models.NoAction || snap.CyclesRun != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestRunCycleEntersLong(t *testing.T) {
	data := &fakeMarketData{lastBarLow: 90}
	trader := &fakeTrader{}
	r, _, events := newTestRunner(t, data, trader)

	r.RunCycle(context.Background())

	if len(trader.submits) != 1 || trader.submits[0] != models.SideLong {
		t.Fatalf("expected one long entry, got %v", trader.submits)
	}
	if events.published[0].Kind != models.EnterLong {
		t.Fatalf("expected enter_long event, got %s", events.published[0].Kind)
	}
	entries := r.TradeLog().Entries()
	if len(entries) != 1 || entries[0].Category != models.LogEntry {
		t.Fatalf("expected one entry-category log record, got %v", entries)
	}
}

func TestRunCycleStopClosesPosition(t *testing.T) {
	data := &fakeMarketData{lastBarLow: 90}
	trader := &fakeTrader{pos: &models.Position{Side: models.SideLong, Quantity: 1, AvgEntryPrice: 100}}
	r, _, events := newTestRunner(t, data, trader)

	r.RunCycle(context.Background())

	if trader.closes != 1 {
		t.Fatalf("expected ClosePosition once, got %d", trader.closes)
	}
	if len(trader.submits) != 0 {
		t.Fatalf("an exit cycle must not also enter")
	}
	if events.published[0].Kind != models.ExitStop {
		t.Fatalf("expected exit_stop event, got %s", events.published[0].Kind)
	}
}

func TestRunCycleDropsOverlap(t *testing.T) {
	data := &fakeMarketData{
		blockDaily: make(chan struct{}),
		entered:    make(chan struct{}),
	}
	trader := &fakeTrader{}
	r, metrics, _ := newTestRunner(t, data, trader)

	entered := data.entered
	done := make(chan struct{})
	go func() {
		r.RunCycle(context.Background())
		close(done)
	}()

	<-entered // first cycle is now mid-flight

	r.RunCycle(context.Background()) // must drop immediately

	close(data.blockDaily)
	<-done

	data.mu.Lock()
	dailyCalls := data.dailyCalls
	data.mu.Unlock()
	if dailyCalls != 1 {
		t.Fatalf("overlapping cycle must not fetch, got %d daily calls", dailyCalls)
	}

	var skips int
	for _, o := range metrics.outcomes() {
		if o == OutcomeSkip {
			skips++
		}
	}
	if skips != 1 {
		t.Fatalf("expected one skip outcome, got %v", metrics.outcomes())
	}
}

func TestRunCycleSleepsOutsideSession(t *testing.T) {
	data := &fakeMarketData{}
	trader := &fakeTrader{}
	r, metrics, _ := newTestRunner(t, data, trader)
	r.now = func() time.Time {
		return time.Date(2024, time.October, 10, 20, 0, 0, 0, market.Location())
	}

	r.RunCycle(context.Background())

	if got := metrics.outcomes(); len(got) != 1 || got[0] != OutcomeSleep {
		t.Fatalf("expected [sleep], got %v", got)
	}
	if data.dailyCalls != 0 {
		t.Fatalf("sleeping cycle must not touch the broker")
	}
	if r.TradeLog().Len() != 0 {
		t.Fatalf("sleeping cycle must not log")
	}
}

func TestRunCycleErrorIsCycleLocal(t *testing.T) {
	data := &fakeMarketData{}
	trader := &fakeTrader{posErr: fmt.Errorf("broker down")}
	r, metrics, _ := newTestRunner(t, data, trader)

	r.RunCycle(context.Background())
	trader.posErr = nil
	r.RunCycle(context.Background())

	got := metrics.outcomes()
	if len(got) != 2 || got[0] != OutcomeError || got[1] != OutcomeOK {
		t.Fatalf("expected [error ok], got %v", got)
	}
	entries := r.TradeLog().Entries()
	if len(entries) != 2 || entries[1].Category != models.LogError {
		t.Fatalf("expected error entry then ok entry, got %v", entries)
	}
}
