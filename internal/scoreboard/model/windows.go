package model

import (
	"strings"
	"time"
)

// Window 리더보드 집계 기간. 현재 시각에서 거슬러 올라가는 구간이다.
type Window string

// WindowDaily 는 집계 기간 상수 목록이다.
const (
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
	WindowAll     Window = "all"
)

// DefaultWindow: 기간이 지정되지 않았을 때 쓰는 기본값
const DefaultWindow = WindowWeekly

// Windows 는 지원하는 모든 기간이다.
var Windows = []Window{WindowDaily, WindowWeekly, WindowMonthly, WindowAll}

// ParseWindow: 대소문자/공백을 무시하고 파싱한다. 빈 문자열은 DefaultWindow.
func ParseWindow(raw string) (Window, bool) {
	w := Window(strings.ToLower(strings.TrimSpace(raw)))
	if w == "" {
		return DefaultWindow, true
	}
	switch w {
	case WindowDaily, WindowWeekly, WindowMonthly, WindowAll:
		return w, true
	}
	return "", false
}

// Duration: 기간 길이. WindowAll 은 0.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDaily:
		return 24 * time.Hour
	case WindowWeekly:
		return 7 * 24 * time.Hour
	case WindowMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Since: now 기준 구간 시작 시각. WindowAll 은 zero time.
func (w Window) Since(now time.Time) time.Time {
	d := w.Duration()
	if d == 0 {
		return time.Time{}
	}
	return now.Add(-d)
}
