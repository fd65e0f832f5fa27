package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"BandTrader/internal/domain/models"
)

// fakeQuoteStream mimics the real stream contract: Read's channels belong to
// one connection, and a read failure pushes one error then closes both.
type fakeQuoteStream struct {
	mu         sync.Mutex
	connects   int
	reads      int
	reconnects int
	connected  bool
}

func (f *fakeQuoteStream) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	f.connected = true
	return nil
}

func (f *fakeQuoteStream) Subscribe(ctx context.Context) error { return nil }

func (f *fakeQuoteStream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	f.mu.Lock()
	f.reads++
	n := f.reads
	f.mu.Unlock()

	trades := make(chan *models.Trade, 8)
	errs := make(chan error, 1)

	if n == 1 {
		// first connection dies after one tick
		go func() {
			trades <- &models.Trade{Symbol: "SPY", Timestamp: 1, Price: 100}
			errs <- fmt.Errorf("stream read: connection reset")
			close(trades)
			close(errs)
		}()
	} else {
		// second connection stays healthy
		trades <- &models.Trade{Symbol: "SPY", Timestamp: 2, Price: 101}
	}
	return trades, errs
}

func (f *fakeQuoteStream) Reconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	f.connected = true
	return nil
}

func (f *fakeQuoteStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeQuoteStream) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeQuoteStream) counts() (reads, reconnects int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads, f.reconnects
}

func TestQuoteWatcherResumesAfterReconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &fakeQuoteStream{}
	w := NewQuoteWatcher(stream, &fakeMetrics{})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// ticks from the connection opened after the failure must flow
	deadline := time.Now().Add(2 * time.Second)
	for {
		if tick := w.Latest("SPY"); tick != nil && tick.Price == 101 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("tick from reconnected stream never consumed, latest=%+v", w.Latest("SPY"))
		}
		time.Sleep(5 * time.Millisecond)
	}

	reads, reconnects := stream.counts()
	if reconnects != 1 {
		t.Fatalf("expected one reconnect, got %d", reconnects)
	}
	if reads != 2 {
		t.Fatalf("expected a fresh Read per connection, got %d", reads)
	}
	if !w.IsConnected() {
		t.Fatalf("expected connected after reconnect")
	}
}

func TestQuoteWatcherStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stream := &fakeQuoteStream{}
	w := NewQuoteWatcher(stream, &fakeMetrics{})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	// after cancellation the run loop must wind down, not reconnect forever
	time.Sleep(20 * time.Millisecond)
	_, before := stream.counts()
	time.Sleep(50 * time.Millisecond)
	_, after := stream.counts()
	if after > before+1 {
		t.Fatalf("run loop still reconnecting after cancel: %d -> %d", before, after)
	}
}
