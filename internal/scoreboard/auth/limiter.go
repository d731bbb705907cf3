package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterPruneSize = 10_000
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter 는 키마다 독립된 토큰 버킷을 둔다.
// 키 수가 limiterPruneSize 를 넘으면 오래 쓰지 않은 버킷을 정리한다.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewKeyedLimiter: 분당 perMinute 회, 순간 burst 회
func NewKeyedLimiter(perMinute float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow: 허용되면 (true, 0), 아니면 다음 토큰까지 남은 시간을 돌려준다.
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= limiterPruneSize {
			l.prune(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len: 추적 중인 키 수
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *KeyedLimiter) prune(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.entries, key)
		}
	}
}
