package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"BandTrader/internal/domain/models"
	drepo "BandTrader/internal/domain/repository"
	"BandTrader/internal/market"
	"BandTrader/pkg/logger"
)

// Cycle outcomes for metrics.
const (
	OutcomeOK    = "ok"
	OutcomeSleep = "sleep"
	OutcomeSkip  = "skip"
	OutcomeError = "error"
)

// RunnerConfig carries the strategy parameters for the cycle runner.
type RunnerConfig struct {
	Symbol         string
	Timeframe      drepo.Timeframe
	WindowDays     int
	BandMultiplier float64
	StopLossPct    float64
	MinSigma       float64
	OrderQty       float64
	Sessions       []string // phases in which cycles evaluate
}

// Status is the runner's last observed state, served to the dashboard.
type Status struct {
	Timestamp    time.Time        `json:"timestamp"`
	Symbol       string           `json:"symbol"`
	Phase        string           `json:"phase"`
	LastPrice    float64          `json:"last_price"`
	Fitted       float64          `json:"fitted"`
	UpperBand    float64          `json:"upper_band"`
	LowerBand    float64          `json:"lower_band"`
	Sigma        float64          `json:"sigma"`
	Position     *models.Position `json:"position,omitempty"`
	LastDecision models.Decision  `json:"last_decision"`
	LastError    string           `json:"last_error,omitempty"`
	CyclesRun    int64            `json:"cycles_run"`
}

// Runner coordinates one evaluation cycle: assemble the multi-day window,
// fit the band, read the position, decide, execute, record. At most one
// cycle is in flight; an overlapping trigger is dropped silently so a slow
// broker can never stack cycles.
type Runner struct {
	cfg      RunnerConfig
	windows  *WindowStore
	data     drepo.MarketData
	trader   drepo.Trader
	events   drepo.Publisher
	metrics  drepo.Metrics
	tradeLog *models.TradeLog
	log      *logger.Logger

	sessions map[market.SessionPhase]bool
	inFlight atomic.Bool
	cycles   atomic.Int64
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

// NewRunner wires the cycle runner.
func NewRunner(
	cfg RunnerConfig,
	windows *WindowStore,
	data drepo.MarketData,
	trader drepo.Trader,
	events drepo.Publisher,
	metrics drepo.Metrics,
	tradeLog *models.TradeLog,
	log *logger.Logger,
) *Runner {
	sessions := make(map[market.SessionPhase]bool, len(cfg.Sessions))
	for _, s := range cfg.Sessions {
		sessions[market.SessionPhase(s)] = true
	}
	return &Runner{
		cfg:      cfg,
		windows:  windows,
		data:     data,
		trader:   trader,
		events:   events,
		metrics:  metrics,
		tradeLog: tradeLog,
		log:      log,
		sessions: sessions,
		now:      time.Now,
		status:   Status{Symbol: cfg.Symbol},
	}
}

// RunCycle executes one evaluation cycle. Errors are cycle-local: they are
// logged and counted, never returned, so the scheduling loop survives any
// single bad cycle.
func (r *Runner) RunCycle(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		// previous cycle still running; this trigger is dropped
		r.metrics.RecordCycle(OutcomeSkip)
		return
	}
	defer r.inFlight.Store(false)

	started := r.now()
	defer func() {
		r.metrics.RecordCycleDuration(time.Since(started).Seconds())
	}()

	phase := market.Classify(started.Unix())
	if !r.sessions[phase] {
		r.metrics.RecordCycle(OutcomeSleep)
		r.updateStatus(func(s *Status) {
			s.Timestamp = started
			s.Phase = string(phase)
		})
		return
	}

	r.cycles.Add(1)
	outcome := r.evaluateCycle(ctx, started, phase)
	r.metrics.RecordCycle(outcome)
}

// evaluateCycle is the executed-cycle body. It writes exactly one trade-log
// entry per invocation.
func (r *Runner) evaluateCycle(ctx context.Context, started time.Time, phase market.SessionPhase) string {
	window, err := r.assembleWindow(ctx, started)
	if err != nil {
		return r.failCycle(started, phase, "window assembly", err)
	}
	if len(window) < 2 {
		// empty or near-empty window: holiday or pre-open quiet, not an error
		r.tradeLog.Append(models.LogInfo, fmt.Sprintf("%s: insufficient bars (%d), nothing to evaluate", r.cfg.Symbol, len(window)))
		r.updateStatus(func(s *Status) {
			s.Timestamp = started
			s.Phase = string(phase)
			s.LastError = ""
			s.CyclesRun = r.cycles.Load()
		})
		return OutcomeOK
	}

	last := window[len(window)-1]
	fit := market.Fit(window)

	pos, err := r.trader.GetPosition(ctx, r.cfg.Symbol)
	if err != nil {
		return r.failCycle(started, phase, "get position", err)
	}

	decision := Evaluate(EvaluateParams{
		Symbol:     r.cfg.Symbol,
		Candle:     last,
		Fit:        fit,
		Multiplier: r.cfg.BandMultiplier,
		StopLoss:   r.cfg.StopLossPct,
		MinSigma:   r.cfg.MinSigma,
		Position:   pos,
	})
	r.metrics.RecordDecision(string(decision.Kind))
	r.metrics.RecordLastPrice(r.cfg.Symbol, last.Close)

	msg, category, execErr := r.execute(ctx, decision)
	if execErr != nil {
		return r.failCycle(started, phase, "execute order", execErr)
	}
	r.tradeLog.Append(category, msg)

	if err := r.events.PublishDecision(ctx, decision); err != nil {
		// eventing is best effort; a dead broker never blocks trading
		r.metrics.RecordError("publish")
		r.log.Warn("decision event publish failed", logger.Error(err))
	}

	r.log.Info("cycle complete",
		logger.String("symbol", r.cfg.Symbol),
		logger.String("phase", string(phase)),
		logger.String("decision", string(decision.Kind)),
		logger.Float64("close", last.Close),
		logger.Float64("fitted", decision.Fitted),
		logger.Float64("sigma", decision.Sigma),
	)

	r.updateStatus(func(s *Status) {
		s.Timestamp = started
		s.Phase = string(phase)
		s.LastPrice = last.Close
		s.Fitted = decision.Fitted
		s.UpperBand = decision.UpperBand
		s.LowerBand = decision.LowerBand
		s.Sigma = decision.Sigma
		s.Position = pos
		s.LastDecision = decision
		s.LastError = ""
		s.CyclesRun = r.cycles.Load()
	})
	return OutcomeOK
}

// assembleWindow builds the regression input: the configured number of prior
// trading days plus today's bars so far, oldest-first.
func (r *Runner) assembleWindow(ctx context.Context, now time.Time) ([]models.Candle, error) {
	refDate := market.TradingDateOf(now.Unix())

	rawDaily, err := r.data.FetchDailyWindow(ctx, r.cfg.Symbol, refDate, market.LookbackCalendarDays(r.cfg.WindowDays))
	if err != nil {
		return nil, fmt.Errorf("daily lookback: %w", err)
	}
	daily, err := models.NormalizeBars(rawDaily)
	if err != nil {
		return nil, fmt.Errorf("daily lookback: %w", err)
	}

	dates := market.PriorTradingDates(daily, refDate, r.cfg.WindowDays)
	if dates == nil {
		return nil, fmt.Errorf("daily lookback too short: %d bars before %s", len(daily), refDate)
	}

	// dates are most-recent-first; assemble oldest-first
	var window []models.Candle
	for i := len(dates) - 1; i >= 0; i-- {
		day, err := r.windows.HistoricalWindow(ctx, r.cfg.Symbol, r.cfg.Timeframe, dates[i])
		if err != nil {
			return nil, fmt.Errorf("historical window %s: %w", dates[i], err)
		}
		window = append(window, day...)
	}

	today, err := r.windows.CurrentWindow(ctx, r.cfg.Symbol, r.cfg.Timeframe, now)
	if err != nil {
		return nil, fmt.Errorf("current window: %w", err)
	}
	return append(window, today...), nil
}

// execute carries out the decision's order, if any, and returns the
// trade-log message and category.
func (r *Runner) execute(ctx context.Context, d models.Decision) (string, models.LogCategory, error) {
	if !d.Actionable() {
		return fmt.Sprintf("%s: no action (%s)", d.Symbol, d.Reason), models.LogInfo, nil
	}

	if d.IsExit() {
		orderID, err := r.trader.ClosePosition(ctx, d.Symbol)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("%s: %s at %.2f (%s) order=%s", d.Symbol, d.Kind, d.Trigger, d.Reason, orderID), models.LogExit, nil
	}

	side := models.SideLong
	if d.Kind == models.EnterShort {
		side = models.SideShort
	}
	orderID, err := r.trader.SubmitOrder(ctx, d.Symbol, r.cfg.OrderQty, side)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%s: %s qty=%v at %.2f (%s) order=%s", d.Symbol, d.Kind, r.cfg.OrderQty, d.Trigger, d.Reason, orderID), models.LogEntry, nil
}

func (r *Runner) failCycle(started time.Time, phase market.SessionPhase, stage string, err error) string {
	r.metrics.RecordError(stage)
	r.log.Error("cycle failed", logger.String("stage", stage), logger.Error(err))
	r.tradeLog.Append(models.LogError, fmt.Sprintf("%s: %s: %v", r.cfg.Symbol, stage, err))
	r.updateStatus(func(s *Status) {
		s.Timestamp = started
		s.Phase = string(phase)
		s.LastError = err.Error()
		s.CyclesRun = r.cycles.Load()
	})
	return OutcomeError
}

func (r *Runner) updateStatus(mutate func(*Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mutate(&r.status)
}

// Snapshot returns a copy of the runner's last observed state.
func (r *Runner) Snapshot() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// TradeLog exposes the bounded cycle log for the dashboard.
func (r *Runner) TradeLog() *models.TradeLog { return r.tradeLog }
