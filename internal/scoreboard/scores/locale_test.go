package scores

import (
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/assets"
)

func TestLocaleFormatter_Format(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 678000000, time.UTC)

	tests := []struct {
		locale    string
		wantTag   string
		wantDate  string
		wantClock string
	}{
		{"en-US", "en-US", "1/2/2025", "3:04:05 PM"},
		{"en-GB", "en-GB", "02/01/2025", "15:04:05"},
		{"ko-KR", "ko-KR", "2025. 1. 2.", "오후 3:04:05"},
		{"de", "de-DE", "2.1.2025", "15:04:05"},
		{"", "en-US", "1/2/2025", "3:04:05 PM"},
		{"tlh", "en-US", "1/2/2025", "3:04:05 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			f, err := NewLocaleFormatter(assets.LocalesYAML, tt.locale, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Tag() != tt.wantTag {
				t.Fatalf("expected tag %s, got %s", tt.wantTag, f.Tag())
			}
			date, clock := f.Format(at)
			if date != tt.wantDate || clock != tt.wantClock {
				t.Fatalf("expected %q %q, got %q %q", tt.wantDate, tt.wantClock, date, clock)
			}
		})
	}
}

func TestLocaleFormatter_TimeZone(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	f, err := NewLocaleFormatter(assets.LocalesYAML, "ko-KR", seoul)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	date, clock := f.Format(time.Date(2025, 1, 2, 20, 0, 0, 0, time.UTC))
	if date != "2025. 1. 3." || clock != "오전 5:00:00" {
		t.Fatalf("unexpected local rendering: %q %q", date, clock)
	}
}

func TestLocaleFormatter_InvalidCatalog(t *testing.T) {
	if _, err := NewLocaleFormatter("default: xx-XX\nlocales: {}\n", "en-US", nil); err == nil {
		t.Fatal("expected error for missing default locale")
	}
}

func TestFormatISO(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	got := FormatISO(time.Date(2025, 1, 2, 12, 4, 5, 678900000, kst))
	if got != "2025-01-02T03:04:05.678Z" {
		t.Fatalf("unexpected ISO timestamp: %s", got)
	}
}

func TestLocaleFormatter_PartialMeridiem(t *testing.T) {
	catalog := `default: xx
locales:
  xx:
    date: "2006-01-02"
    time: "3:04 PM"
    meridiem:
      pm: "p.m."
`
	f, err := NewLocaleFormatter(catalog, "xx", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC), "9:30 AM"},
		{time.Date(2025, 1, 2, 21, 30, 0, 0, time.UTC), "9:30 p.m."},
	}
	for _, tt := range tests {
		if _, clock := f.Format(tt.at); clock != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, clock)
		}
	}
}
