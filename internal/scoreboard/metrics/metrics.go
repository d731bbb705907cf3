// Package metrics: 스코어보드 Prometheus 메트릭과 /metrics 엔드포인트 보호 유틸리티
package metrics

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/httputil"
)

// 점수 제출 결과 라벨
const (
	SubmitStored         = "stored"
	SubmitSkippedNoUser  = "skipped_no_user"
	SubmitProfileMissing = "profile_missing"
	SubmitFailed         = "failed"
)

// Metrics: 서비스 카운터 모음
type Metrics struct {
	registry *prometheus.Registry

	ScoreSubmissions *prometheus.CounterVec
	AuthAttempts     *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	HubClients       prometheus.Gauge
}

// New: 전용 Registry 에 카운터를 등록한다. Go/프로세스 수집기도 함께 등록한다.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ScoreSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoreboard",
			Name:      "score_submissions_total",
			Help:      "Score submissions by outcome.",
		}, []string{"result"}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoreboard",
			Name:      "auth_attempts_total",
			Help:      "Sign-up and sign-in attempts by operation and outcome.",
		}, []string{"operation", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoreboard",
			Name:      "cache_lookups_total",
			Help:      "Leaderboard cache lookups by kind and outcome.",
		}, []string{"kind", "result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoreboard",
			Name:      "refresh_events_total",
			Help:      "Refresh events by type and delivery outcome.",
		}, []string{"type", "result"}),
		HubClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scoreboard",
			Name:      "event_clients",
			Help:      "Connected websocket event clients.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ScoreSubmissions,
		m.AuthAttempts,
		m.CacheLookups,
		m.EventsPublished,
		m.HubClients,
	)
	return m
}

// Registry: 테스트와 핸들러용 Registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler: 등록된 메트릭을 노출하는 핸들러
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SubmitOutcome: 제출 결과 카운터를 올린다. nil 수신자는 무시한다.
func (m *Metrics) SubmitOutcome(result string) {
	if m == nil {
		return
	}
	m.ScoreSubmissions.WithLabelValues(result).Inc()
}

// AuthOutcome: 인증 시도 카운터를 올린다.
func (m *Metrics) AuthOutcome(operation, result string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(operation, result).Inc()
}

// CacheOutcome: 캐시 조회 카운터를 올린다. hit 이면 "hit", 아니면 "miss".
func (m *Metrics) CacheOutcome(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

// EventOutcome: 이벤트 발행 카운터를 올린다.
func (m *Metrics) EventOutcome(eventType, result string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

// SetHubClients: 연결된 websocket 클라이언트 수
func (m *Metrics) SetHubClients(n int) {
	if m == nil {
		return
	}
	m.HubClients.Set(float64(n))
}

// APIKeyAuth: /metrics 보호를 위한 간단한 API 키 인증 미들웨어입니다.
// - expected 가 비어있으면 보호하지 않습니다.
// - 헤더는 Authorization: Bearer <token> 또는 X-API-Key: <token> 를 지원합니다.
func APIKeyAuth(expected string, next http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if provided == "" {
			provided = httputil.BearerToken(r)
		}
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			_ = httputil.WriteErrorJSON(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
