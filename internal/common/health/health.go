// Package health: 서비스 상태 정보
package health

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"
)

var (
	startTime = time.Now()
	version   = "dev"
	initOnce  sync.Once
)

// Init: 서비스 시작 시 호출 (버전 정보 설정)
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Version: 현재 서비스 버전
func Version() string { return version }

// Check: 의존 컴포넌트 상태 점검 함수. nil 반환이면 정상.
type Check func(ctx context.Context) error

// Response: /health 엔드포인트 표준 응답
type Response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Components map[string]string `json:"components,omitempty"`
}

// Get: 현재 상태 반환
func Get() Response {
	return Response{
		Status:     "ok",
		Version:    version,
		Uptime:     formatDuration(time.Since(startTime)),
		Goroutines: runtime.NumGoroutine(),
	}
}

// Evaluate: checks 를 순서대로 실행하고 하나라도 실패하면 status 를 "degraded" 로 둔다.
func Evaluate(ctx context.Context, checks map[string]Check) Response {
	resp := Get()
	if len(checks) == 0 {
		return resp
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp.Components = make(map[string]string, len(checks))
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			resp.Status = "degraded"
			resp.Components[name] = err.Error()
			continue
		}
		resp.Components[name] = "ok"
	}
	return resp
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
