package model

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		raw  string
		want Window
		ok   bool
	}{
		{"", WindowWeekly, true},
		{" Daily ", WindowDaily, true},
		{"MONTHLY", WindowMonthly, true},
		{"all", WindowAll, true},
		{"yearly", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseWindow(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseWindow(%q) = %q,%v want %q,%v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWindowSince(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	if got := WindowDaily.Since(now); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("unexpected daily start: %v", got)
	}
	if got := WindowWeekly.Since(now); !got.Equal(time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected weekly start: %v", got)
	}
	if got := WindowAll.Since(now); !got.IsZero() {
		t.Errorf("expected zero start for all, got %v", got)
	}
}
