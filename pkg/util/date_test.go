package util

import (
	"strconv"
	"strings"
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

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-01-31")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
	end := EndOfDay(got)
	if end.Day() != 31 || end.Hour() != 23 {
		t.Fatalf("unexpected end of day %v", end)
	}
}

func TestIsDate(t *testing.T) {
	if !IsDate("2024-01-31") {
		t.Fatalf("expected calendar date")
	}
	for _, s := range []string{"2024-01-31T00:00:00Z", "1706659200", ""} {
		if IsDate(s) {
			t.Fatalf("%q is not a bare date", s)
		}
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

func TestParseTimeInvalid(t *testing.T) {
	if _, ok := ParseTime("31/01/2024"); ok {
		t.Fatalf("expected failure")
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
	long := strings.Repeat("a", 600)
	if got := Truncate(long, 500); len(got) != 500 {
		t.Fatalf("unexpected length %d", len(got))
	}
	// "é" is two bytes; cutting at 2 must not split it
	if got := Truncate("aé", 2); got != "a" {
		t.Fatalf("unexpected %q", got)
	}
}
