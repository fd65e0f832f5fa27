package models

import (
	"sync"
	"time"
)

// LogCategory classifies trade log entries.
type LogCategory string

const (
	LogInfo  LogCategory = "info"
	LogEntry LogCategory = "entry"
	LogExit  LogCategory = "exit"
	LogError LogCategory = "error"
)

// TradeLogEntry is one cycle-outcome record for the dashboard.
type TradeLogEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
	Category  LogCategory `json:"category"`
}

// DefaultTradeLogCap bounds the in-memory trade log.
const DefaultTradeLogCap = 100

// TradeLog is an append-only bounded ring of the most recent entries,
// most-recent-first. Once the cap is reached the oldest entries are
// silently dropped. Safe for concurrent use.
type TradeLog struct {
	mu      sync.RWMutex
	entries []TradeLogEntry
	cap     int
}

// NewTradeLog creates a trade log with the given capacity. Non-positive
// capacities fall back to DefaultTradeLogCap.
func NewTradeLog(capacity int) *TradeLog {
	if capacity <= 0 {
		capacity = DefaultTradeLogCap
	}
	return &TradeLog{
		entries: make([]TradeLogEntry, 0, capacity),
		cap:     capacity,
	}
}

// Append records an entry, evicting the oldest when full.
func (l *TradeLog) Append(category LogCategory, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := TradeLogEntry{Timestamp: time.Now(), Message: message, Category: category}
	l.entries = append([]TradeLogEntry{e}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Entries returns a copy of the ring, most-recent-first.
func (l *TradeLog) Entries() []TradeLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]TradeLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
