// Package httpapi 는 스코어보드 HTTP 라우트를 등록한다.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/httputil"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/auth"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/scores"
)

// Authenticator: 가입/로그인/토큰 검증
type Authenticator interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (auth.Session, error)
	SignIn(ctx context.Context, identifier, password string) (auth.Session, error)
	Authenticate(ctx context.Context, token string) (model.User, error)
}

// ScoreSubmitter: 점수 제출. 실패는 호출자에게 드러나지 않는다.
type ScoreSubmitter interface {
	Submit(ctx context.Context, user *model.User, score int64)
}

// Leaderboard: 리더보드/통계 조회
type Leaderboard interface {
	Top(ctx context.Context, window model.Window, limit int) ([]model.LeaderboardEntry, error)
	PlayerStats(ctx context.Context, uid string) (model.UserStats, error)
}

// EventStream: 웹소켓 갱신 이벤트 구독
type EventStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, uid string)
}

// Deps: 라우트가 쓰는 협력 객체. Events, Metrics 가 nil 이면 해당 라우트를 등록하지 않는다.
type Deps struct {
	Auth          Authenticator
	Scores        ScoreSubmitter
	Leaderboard   Leaderboard
	Events        EventStream
	Metrics       *metrics.Metrics
	MetricsAPIKey string
	HealthChecks  map[string]health.Check
	DefaultWindow model.Window
	Messages      *messageprovider.Provider
	Logger        *slog.Logger
}

type (
	// SignInRequest: 로그인 요청 DTO. identifier 는 이메일 또는 사용자명이다.
	SignInRequest struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}

	// ScoreRequest: 점수 제출 요청 DTO
	ScoreRequest struct {
		Score  *int64 `json:"score"`
		Window string `json:"window,omitempty"`
	}

	// AcceptedResponse: 비동기 처리 응답
	AcceptedResponse struct {
		Status string `json:"status"`
	}

	// LeaderboardResponse: 리더보드 조회 응답
	LeaderboardResponse struct {
		Window  model.Window             `json:"window"`
		Entries []model.LeaderboardEntry `json:"entries"`
	}
)

type api struct {
	Deps
}

// Register HTTP API 라우트 등록.
func Register(mux *http.ServeMux, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.DefaultWindow == "" {
		deps.DefaultWindow = model.DefaultWindow
	}
	a := &api{Deps: deps}

	// GET /health - 헬스체크
	mux.HandleFunc("GET /health", a.handleHealth)

	// POST /api/auth/signup - 가입
	mux.HandleFunc("POST /api/auth/signup", a.handleSignUp)

	// POST /api/auth/signin - 로그인
	mux.HandleFunc("POST /api/auth/signin", a.handleSignIn)

	// POST /api/scores - 점수 제출
	mux.HandleFunc("POST /api/scores", a.handleSubmitScore)

	// GET /api/stats/me - 내 통계
	mux.HandleFunc("GET /api/stats/me", a.handleMyStats)

	// GET /api/stats/{uid} - 사용자 통계
	mux.HandleFunc("GET /api/stats/{uid}", a.handleUserStats)

	// GET /api/leaderboard - 기간별 상위 점수
	mux.HandleFunc("GET /api/leaderboard", a.handleLeaderboard)

	// GET /api/events - 갱신 이벤트 웹소켓
	if deps.Events != nil {
		mux.HandleFunc("GET /api/events", a.handleEvents)
	}

	// GET /metrics - 프로메테우스
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", metrics.APIKeyAuth(deps.MetricsAPIKey, deps.Metrics.Handler()))
	}

	deps.Logger.Info("scoreboard_http_api_registered", "events", deps.Events != nil, "metrics", deps.Metrics != nil)
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := health.Evaluate(r.Context(), a.HealthChecks)
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	a.respondJSON(w, status, resp)
}

func (a *api) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpInput
	if !a.decode(w, r, &req) {
		return
	}
	session, err := a.Auth.SignUp(r.Context(), req)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, session)
}

func (a *api) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !a.decode(w, r, &req) {
		return
	}
	session, err := a.Auth.SignIn(r.Context(), req.Identifier, req.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, session)
}

// handleSubmitScore: 토큰이 없으면 게스트 플레이로 보고 아무것도 저장하지 않는다.
func (a *api) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var user *model.User
	if token := httputil.BearerToken(r); token != "" {
		u, err := a.Auth.Authenticate(r.Context(), token)
		if err != nil {
			a.respondError(w, r, err)
			return
		}
		user = &u
	}

	var req ScoreRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Score == nil {
		a.respondError(w, r, sberrors.InvalidArgumentError{
			Message: a.Messages.Get("validation.required", messageprovider.P("field", "score")),
		})
		return
	}
	window, err := a.parseWindow(req.Window)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	a.Scores.Submit(scores.WithActiveWindow(r.Context(), window), user, *req.Score)
	a.respondJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}

func (a *api) handleMyStats(w http.ResponseWriter, r *http.Request) {
	user, err := a.Auth.Authenticate(r.Context(), httputil.BearerToken(r))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondStats(w, r, user.ID)
}

func (a *api) handleUserStats(w http.ResponseWriter, r *http.Request) {
	a.respondStats(w, r, strings.TrimSpace(r.PathValue("uid")))
}

func (a *api) respondStats(w http.ResponseWriter, r *http.Request, uid string) {
	stats, err := a.Leaderboard.PlayerStats(r.Context(), uid)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, stats)
}

func (a *api) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	window, err := a.parseWindow(query.Get("window"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			a.respondError(w, r, sberrors.InvalidArgumentError{Message: a.Messages.Get("api.invalid_limit")})
			return
		}
		limit = n
	}

	entries, err := a.Leaderboard.Top(r.Context(), window, limit)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	a.respondJSON(w, http.StatusOK, LeaderboardResponse{Window: window, Entries: entries})
}

// handleEvents: ?token= 이 있으면 본인 통계 이벤트도 받는다. 잘못된 토큰은 401.
func (a *api) handleEvents(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = httputil.BearerToken(r)
	}

	var uid string
	if token != "" {
		user, err := a.Auth.Authenticate(r.Context(), token)
		if err != nil {
			a.respondError(w, r, err)
			return
		}
		uid = user.ID
	}
	a.Events.ServeWS(w, r, uid)
}

// parseWindow: 빈 값은 설정된 기본 기간
func (a *api) parseWindow(raw string) (model.Window, error) {
	if strings.TrimSpace(raw) == "" {
		return a.DefaultWindow, nil
	}
	window, ok := model.ParseWindow(raw)
	if !ok {
		return "", sberrors.InvalidArgumentError{
			Message: a.Messages.Get("api.invalid_window", messageprovider.P("window", strings.TrimSpace(raw))),
		}
	}
	return window, nil
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := httputil.ReadJSON(r, out, httputil.DefaultMaxBodyBytes); err != nil {
		a.Logger.InfoContext(r.Context(), "request_body_rejected", "path", r.URL.Path, "err", err)
		a.respondErrorCode(w, http.StatusBadRequest, codeInvalidArgument, a.Messages.Get("api.invalid_json"))
		return false
	}
	return true
}

func (a *api) respondJSON(w http.ResponseWriter, status int, v any) {
	if err := httputil.WriteJSON(w, status, v); err != nil {
		a.Logger.Warn("response_write_failed", "err", err)
	}
}
