//go:build !wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/config"
)

// Initialize 는 스코어보드 의존성을 초기화하고 ServerApp 을 반환한다.
// cleanup 은 만든 순서의 역순으로 자원을 닫는다.
func Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	tracing, cleanupTelemetry, err := newScoreboardTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	msgProvider, err := newScoreboardMessageProvider()
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	formatter, err := newScoreboardFormatter(cfg)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	dataValkeyClient, cleanupDataValkey, err := newScoreboardDataValkey(ctx, cfg, logger)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	store, cleanupStore, err := newScoreboardStore(ctx, cfg, logger)
	if err != nil {
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	cache, err := newScoreboardCache(cfg, dataValkeyClient)
	if err != nil {
		cleanupStore()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	m := newScoreboardMetrics()
	board := newScoreboardLeaderboard(cfg, store, cache, m, logger)
	publisher := newScoreboardEventPublisher(cfg, dataValkeyClient, logger)
	hub, cleanupHub := newScoreboardHub(logger, m)
	notifier := newScoreboardNotifier(board, publisher, hub, m, logger)

	locker := newScoreboardSignUpLocker(dataValkeyClient, logger)
	resolver := newScoreboardResolver(store)
	authService, err := newScoreboardAuth(cfg, store, resolver, locker, msgProvider, m, logger)
	if err != nil {
		cleanupHub()
		cleanupStore()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	submitter := newScoreboardSubmitter(cfg, store, formatter, notifier, m, logger)
	checks := newScoreboardHealthChecks(store, dataValkeyClient)

	httpMux := newScoreboardHTTPMux(cfg, authService, submitter, board, hub, m, checks, msgProvider, logger)
	httpServer := newScoreboardHTTPServer(cfg, httpMux, logger)
	grpcHealth := newScoreboardGRPCHealth(cfg, logger)

	serverApp := newScoreboardServerApp(cfg, logger, httpServer, tracing, grpcHealth)

	cleanup := func() {
		cleanupHub()
		cleanupStore()
		cleanupDataValkey()
		cleanupTelemetry()
	}

	return serverApp, cleanup, nil
}
