package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDateBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	start, end, ok := DateBounds("2024-10-10", loc)
	if !ok {
		t.Fatalf("expected ok")
	}
	if end-start != 24*3600-1 {
		t.Fatalf("unexpected span %d", end-start)
	}
	if time.Unix(start, 0).In(loc).Hour() != 0 {
		t.Fatalf("start not midnight")
	}
}

func TestDateBoundsMalformed(t *testing.T) {
	loc := time.UTC
	if _, _, ok := DateBounds("10/10/2024", loc); ok {
		t.Fatalf("expected malformed date to fail")
	}
}
