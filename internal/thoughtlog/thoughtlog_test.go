package thoughtlog

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAppendAccumulatesValidJSONLines(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	day := time.Date(2025, 8, 3, 12, 0, 0, 0, time.UTC)
	w.SetClock(func() time.Time { return day })

	entries := []Entry{
		{Timestamp: day.Format(time.RFC3339), Input: "seed", Output: "first", Mode: "standard", Model: "tinyllama"},
		{Timestamp: day.Format(time.RFC3339), Input: "first", Output: "second", Mode: "standard", Model: "tinyllama"},
		{Timestamp: day.Format(time.RFC3339), Input: "other request", Output: "out", Mode: "mystical", Model: "tinyllama"},
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	f, err := os.Open(w.Path(day))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var got []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(got)+1, err)
		}
		if e.Timestamp == "" || e.Input == "" || e.Output == "" || e.Mode == "" || e.Model == "" {
			t.Errorf("line %d missing required fields: %+v", len(got)+1, e)
		}
		got = append(got, e)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d lines, want %d", len(got), len(entries))
	}
	if got[1].Input != "first" {
		t.Errorf("entries out of order: %+v", got[1])
	}
}

func TestDailyRollover(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	day1 := time.Date(2025, 8, 3, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)

	w.SetClock(func() time.Time { return day1 })
	if err := w.Append(Entry{Timestamp: "t", Input: "a", Output: "b", Mode: "standard", Model: "m"}); err != nil {
		t.Fatal(err)
	}
	w.SetClock(func() time.Time { return day2 })
	if err := w.Append(Entry{Timestamp: "t", Input: "c", Output: "d", Mode: "standard", Model: "m"}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(w.Path(day1)); err != nil {
		t.Errorf("day1 file missing: %v", err)
	}
	if _, err := os.Stat(w.Path(day2)); err != nil {
		t.Errorf("day2 file missing: %v", err)
	}
	if w.Path(day1) == w.Path(day2) {
		t.Error("expected distinct files across midnight")
	}
}
