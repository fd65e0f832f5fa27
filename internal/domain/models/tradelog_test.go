package models

import (
	"fmt"
	"testing"
)

func TestTradeLogBounded(t *testing.T) {
	l := NewTradeLog(100)
	for i := 0; i < 150; i++ {
		l.Append(LogInfo, fmt.Sprintf("entry %d", i))
	}

	if l.Len() != 100 {
		t.Fatalf("expected 100 retained entries, got %d", l.Len())
	}

	entries := l.Entries()
	if entries[0].Message != "entry 149" {
		t.Fatalf("expected most recent first, got %q", entries[0].Message)
	}
	if entries[99].Message != "entry 50" {
		t.Fatalf("expected oldest retained to be entry 50, got %q", entries[99].Message)
	}
}

func TestTradeLogDefaultCap(t *testing.T) {
	l := NewTradeLog(0)
	for i := 0; i < DefaultTradeLogCap+10; i++ {
		l.Append(LogInfo, "x")
	}
	if l.Len() != DefaultTradeLogCap {
		t.Fatalf("expected default cap %d, got %d", DefaultTradeLogCap, l.Len())
	}
}

func TestTradeLogEntriesIsCopy(t *testing.T) {
	l := NewTradeLog(10)
	l.Append(LogExit, "closed")

	entries := l.Entries()
	entries[0].Message = "mutated"

	if l.Entries()[0].Message != "closed" {
		t.Fatalf("Entries must return a copy")
	}
}
