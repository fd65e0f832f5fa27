package usecase

import (
	"context"
	"sync"

	"BandTrader/internal/domain/models"
	drepo "BandTrader/internal/domain/repository"
)

// QuoteWatcher consumes live trade ticks and keeps the latest quote per
// symbol for the dashboard. Ticks never feed decisions; the cycle runner
// reads candles only.
type QuoteWatcher struct {
	stream  drepo.QuoteStream
	metrics drepo.Metrics

	mu     sync.RWMutex
	latest map[string]*models.Trade
}

// NewQuoteWatcher creates a new QuoteWatcher instance.
func NewQuoteWatcher(stream drepo.QuoteStream, metrics drepo.Metrics) *QuoteWatcher {
	return &QuoteWatcher{stream: stream, metrics: metrics, latest: make(map[string]*models.Trade)}
}

// IsConnected returns true if the quote stream is connected.
func (w *QuoteWatcher) IsConnected() bool {
	return w.stream.IsConnected()
}

func (w *QuoteWatcher) Start(ctx context.Context) error {
	if err := w.stream.Connect(ctx); err != nil {
		return err
	}
	if err := w.stream.Subscribe(ctx); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

// run drives the stream for the watcher's lifetime. Read's channels die with
// their connection, so every reconnect must open a fresh pair; consuming the
// old ones after a failure would spin on closed channels forever.
func (w *QuoteWatcher) run(ctx context.Context) {
	for {
		trCh, errCh := w.stream.Read(ctx)
		if !w.consume(ctx, trCh, errCh) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if err := w.stream.Reconnect(ctx); err != nil {
			// Reconnect sleeps its own delay; loop and try again
			w.metrics.RecordError("stream")
		}
	}
}

// consume drains one connection's channels. It returns true when the stream
// died and a reconnect should follow, false when the context ended.
func (w *QuoteWatcher) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case err, ok := <-errCh:
			if ok && err != nil {
				w.metrics.RecordError("stream")
			}
			return true
		case t, ok := <-trCh:
			if !ok {
				return true
			}
			if t == nil {
				continue
			}
			w.mu.Lock()
			w.latest[t.Symbol] = t
			w.mu.Unlock()
			w.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

// Latest returns the most recent tick for symbol, or nil if none arrived yet.
func (w *QuoteWatcher) Latest(symbol string) *models.Trade {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest[symbol]
}

// Shutdown closes the stream.
func (w *QuoteWatcher) Shutdown(ctx context.Context) error {
	return w.stream.Close()
}
