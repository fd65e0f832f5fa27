package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"BandTrader/internal/domain/models"
	drepo "BandTrader/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a QuoteStream backed by the broker's market-data
// WebSocket. Ticks only feed the dashboard; decisions never read from here.
type Stream struct {
	streamURL      string
	keyID          string
	secretKey      string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	// mu guards conn and connected: Reconnect swaps the connection on the
	// consumer goroutine while the ping loop reads it.
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates a quote stream for the given symbols.
func NewStream(streamURL, keyID, secretKey string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.QuoteStream {
	return &Stream{
		streamURL:      streamURL,
		keyID:          keyID,
		secretKey:      secretKey,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

func (s *Stream) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Connect dials the WebSocket endpoint and authenticates.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}

	auth := map[string]string{"action": "auth", "key": s.keyID, "secret": s.secretKey}
	if err := conn.WriteJSON(auth); err != nil {
		_ = conn.Close()
		return fmt.Errorf("stream auth: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Subscribe subscribes to trade ticks for the configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	conn := s.current()
	if conn == nil || !s.IsConnected() {
		return fmt.Errorf("stream not connected")
	}
	msg := map[string]any{"action": "subscribe", "trades": s.symbols}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %v: %w", s.symbols, err)
	}
	return nil
}

// Frames arrive as arrays of typed messages; only T=="t" carries a trade.
type wsTrade struct {
	Type      string  `json:"T"`
	Symbol    string  `json:"S"`
	Price     float64 `json:"p"`
	Size      float64 `json:"s"`
	Timestamp string  `json:"t"` // RFC3339Nano
}

// Read streams Trade events and errors. The channels belong to the current
// connection and close when it dies; the caller opens a new pair after a
// successful Reconnect.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	trades := make(chan *models.Trade, 1024)
	errs := make(chan error, 1)
	done := make(chan struct{})

	// ping loop, lives exactly as long as the read loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if conn := s.current(); conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(trades)
		defer close(errs)
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := s.current()
				if conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var frame []wsTrade
				if err := json.Unmarshal(b, &frame); err != nil {
					// ignore control frames
					continue
				}
				for _, m := range frame {
					if m.Type != "t" {
						continue
					}
					ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
					if err != nil {
						continue
					}
					trade := &models.Trade{Symbol: m.Symbol, Timestamp: ts.Unix(), Price: m.Price, Volume: m.Size}
					select {
					case trades <- trade:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return trades, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
