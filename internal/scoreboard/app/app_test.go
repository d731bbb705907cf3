package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/auth"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/config"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/httpapi"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

func testConfig(driver, sqlitePath string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		ServerTuning: config.ServerTuningConfig{
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:             driver,
			SQLitePath:         sqlitePath,
			ConnectMaxAttempts: 1,
		},
		Cache:  config.CacheConfig{Backend: config.CacheBackendMemory, TTL: time.Minute},
		Events: config.EventsConfig{StreamKey: "scoreboard:events", StreamMaxLen: 100},
		Scores: config.ScoresConfig{
			TopN:          model.DefaultTopScores,
			DefaultWindow: model.WindowWeekly,
			Locale:        "en-US",
			TimeZone:      time.UTC,
		},
		Auth: config.AuthConfig{
			TokenSecret:         "app-test-secret",
			TokenTTL:            time.Hour,
			TokenIssuer:         "scoreboard",
			BcryptCost:          bcrypt.MinCost,
			SignInRatePerMinute: 60,
			SignInBurst:         5,
		},
	}
}

func call(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInitialize_EndToEnd(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(t *testing.T) *config.Config
	}{
		{"memory", func(*testing.T) *config.Config { return testConfig(config.DBDriverMemory, "") }},
		{"sqlite", func(t *testing.T) *config.Config {
			return testConfig(config.DBDriverSQLite, filepath.Join(t.TempDir(), "scoreboard.db"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			serverApp, cleanup, err := Initialize(context.Background(), tt.cfg(t), logger)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			t.Cleanup(cleanup)
			if len(serverApp.BackgroundTasks) != 0 {
				t.Fatalf("expected no background tasks, got %d", len(serverApp.BackgroundTasks))
			}
			h := serverApp.Server.Handler

			rec := call(t, h, http.MethodGet, "/health", "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected healthy, got %d: %s", rec.Code, rec.Body.String())
			}

			rec = call(t, h, http.MethodPost, "/api/auth/signup", "",
				`{"username":"Ace","email":"ace@example.com","password":"hunter22"}`)
			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			var session auth.Session
			if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, score := range []string{"30", "70"} {
				rec = call(t, h, http.MethodPost, "/api/scores", session.Token, `{"score":`+score+`}`)
				if rec.Code != http.StatusAccepted {
					t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
				}
			}

			rec = call(t, h, http.MethodGet, "/api/stats/me", session.Token, "")
			var stats model.UserStats
			if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stats.TotalScore != 100 || len(stats.Scores) != 2 || stats.Scores[0].Score != 70 {
				t.Fatalf("unexpected stats: %+v", stats)
			}

			rec = call(t, h, http.MethodGet, "/api/leaderboard?window=all", "", "")
			var board httpapi.LeaderboardResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(board.Entries) != 2 || board.Entries[0].Score != 70 || board.Entries[0].Username != "Ace" {
				t.Fatalf("unexpected leaderboard: %+v", board)
			}
		})
	}
}

func TestInitialize_FailsWithoutSecret(t *testing.T) {
	cfg := testConfig(config.DBDriverMemory, "")
	cfg.Auth.TokenSecret = ""

	_, _, err := Initialize(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNewScoreboardGRPCHealth(t *testing.T) {
	cfg := testConfig(config.DBDriverMemory, "")
	if hs := newScoreboardGRPCHealth(cfg, nil); hs != nil {
		t.Fatal("expected nil health server when port is 0")
	}

	cfg.GRPC.HealthPort = 50551
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hs := newScoreboardGRPCHealth(cfg, logger)
	if hs == nil {
		t.Fatal("expected health server")
	}
	serverApp := newScoreboardServerApp(cfg, logger, &http.Server{Addr: "127.0.0.1:0"}, nil, hs)
	if len(serverApp.BackgroundTasks) != 1 || serverApp.BackgroundTasks[0].Name != "grpc_health" {
		t.Fatalf("unexpected background tasks: %+v", serverApp.BackgroundTasks)
	}
}
