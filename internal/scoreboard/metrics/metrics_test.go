package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.SubmitOutcome(SubmitStored)
	m.SubmitOutcome(SubmitStored)
	m.SubmitOutcome(SubmitFailed)
	m.CacheOutcome("leaderboard", true)
	m.SetHubClients(3)

	if got := testutil.ToFloat64(m.ScoreSubmissions.WithLabelValues(SubmitStored)); got != 2 {
		t.Fatalf("expected 2 stored, got %v", got)
	}
	if got := testutil.ToFloat64(m.ScoreSubmissions.WithLabelValues(SubmitFailed)); got != 1 {
		t.Fatalf("expected 1 failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("leaderboard", "hit")); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.HubClients); got != 3 {
		t.Fatalf("expected 3 clients, got %v", got)
	}
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	m.SubmitOutcome(SubmitStored)
	m.AuthOutcome("signin", "ok")
	m.CacheOutcome("stats", false)
	m.EventOutcome("leaderboard", "published")
	m.SetHubClients(1)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SubmitOutcome(SubmitSkippedNoUser)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `scoreboard_score_submissions_total{result="skipped_no_user"} 1`) {
		t.Fatalf("expected counter in exposition, got:\n%s", rr.Body.String())
	}
}

func TestAPIKeyAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name     string
		expected string
		header   string
		value    string
		want     int
	}{
		{"unprotected", "", "", "", http.StatusOK},
		{"missing key", "secret", "", "", http.StatusUnauthorized},
		{"x-api-key", "secret", "X-API-Key", "secret", http.StatusOK},
		{"bearer", "secret", "Authorization", "Bearer secret", http.StatusOK},
		{"wrong", "secret", "X-API-Key", "nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rr := httptest.NewRecorder()
			APIKeyAuth(tt.expected, next).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}
