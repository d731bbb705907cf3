// Package app 은 스코어보드 서비스 의존성을 조립한다.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/dbutil"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/di"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/grpcserver"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/httpserver"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/messageprovider"
	commonmq "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/processinglock"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/assets"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/auth"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/config"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/httpapi"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/identity"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/leaderboard"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/notify"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/repository"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/scores"
)

const (
	cachePrefix       = "scoreboard:cache"
	signUpLockPrefix  = "scoreboard:lock:"
	signUpLockTTL     = 10 * time.Second
	hubSendBuffer     = 16
	telemetryShutdown = 5 * time.Second
)

// documentStore 는 드라이버별 문서 저장소와 그 헬스 체크를 묶는다.
type documentStore struct {
	docstore.Store
	ping health.Check
}

// healthChecks: /health 가 점검할 컴포넌트
type healthChecks map[string]health.Check

func newScoreboardTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*telemetry.Provider, func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdown)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}
	return provider, cleanup, nil
}

func newScoreboardDataValkey(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (di.DataValkeyClient, func(), error) {
	client, closeFn, err := bootstrap.NewAndPingDataValkeyClient(ctx, cfg.Redis, logger)
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("init valkey failed: %w", err)
	}
	return client, closeFn, nil
}

func newScoreboardMessageProvider() (*messageprovider.Provider, error) {
	provider, err := messageprovider.NewFromYAMLAtPath(assets.MessagesYAML, "scoreboard")
	if err != nil {
		return nil, fmt.Errorf("load messages failed: %w", err)
	}
	return provider, nil
}

func newScoreboardMetrics() *metrics.Metrics {
	return metrics.New()
}

// newScoreboardStore: memory 드라이버는 프로세스 내 저장소, 나머지는 GORM 문서 테이블.
func newScoreboardStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*documentStore, func(), error) {
	if cfg.Database.Driver == config.DBDriverMemory {
		logger.Warn("document_store_in_memory")
		return &documentStore{Store: docstore.NewMemoryStore()}, func() {}, nil
	}

	db, sqlDB, err := dbutil.OpenWithRetry(ctx, func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		return repository.Open(ctx, repository.OpenConfig{
			Driver:     cfg.Database.Driver,
			DSN:        cfg.Database.DSN(),
			MaxOpen:    cfg.Database.MaxOpenConns,
			MaxIdle:    cfg.Database.MaxIdleConns,
			MaxLifeSec: cfg.Database.ConnMaxLifetimeSec,
		})
	}, dbutil.RetryConfig{MaxAttempts: cfg.Database.ConnectMaxAttempts}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s failed: %w", cfg.Database.Driver, err)
	}

	closeFn := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("db_close_failed", "driver", cfg.Database.Driver, "err", closeErr)
		}
	}

	repo := repository.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	logger.Info("document_store_ready", "driver", cfg.Database.Driver)
	return &documentStore{Store: repo, ping: repo.Ping}, closeFn, nil
}

func newScoreboardCache(cfg *config.Config, client di.DataValkeyClient) (leaderboard.Cache, error) {
	c, err := leaderboard.NewCache(cfg.Cache.Backend, client.Client, cachePrefix, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("create cache failed: %w", err)
	}
	return c, nil
}

func newScoreboardLeaderboard(
	cfg *config.Config,
	store *documentStore,
	c leaderboard.Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *leaderboard.Service {
	return leaderboard.NewService(store, c, m, logger, leaderboard.Config{
		DefaultLimit: cfg.Leaderboard.DefaultLimit,
		MaxLimit:     cfg.Leaderboard.MaxLimit,
	})
}

// newScoreboardEventPublisher: Valkey 가 꺼져 있으면 스트림 발행 없이 websocket 으로만 알린다.
func newScoreboardEventPublisher(cfg *config.Config, client di.DataValkeyClient, logger *slog.Logger) notify.Publisher {
	if !client.Enabled() {
		return nil
	}
	return commonmq.NewStreamPublisher(client.Client, logger, commonmq.StreamPublisherConfig{
		Stream: cfg.Events.StreamKey,
		MaxLen: cfg.Events.StreamMaxLen,
	})
}

func newScoreboardHub(logger *slog.Logger, m *metrics.Metrics) (*notify.Hub, func()) {
	hub := notify.NewHub(logger, m, hubSendBuffer)
	return hub, hub.Close
}

func newScoreboardNotifier(
	board *leaderboard.Service,
	publisher notify.Publisher,
	hub *notify.Hub,
	m *metrics.Metrics,
	logger *slog.Logger,
) *notify.Notifier {
	return notify.NewNotifier(board, publisher, hub, m, logger)
}

// newScoreboardSignUpLocker: 여러 인스턴스가 뜰 수 있으므로 Valkey 가 있으면 분산 락을 쓴다.
func newScoreboardSignUpLocker(client di.DataValkeyClient, logger *slog.Logger) processinglock.Locker {
	if !client.Enabled() {
		return processinglock.NewLocal()
	}
	return processinglock.New(client.Client, logger, func(key string) string {
		return signUpLockPrefix + key
	}, signUpLockTTL)
}

func newScoreboardResolver(store *documentStore) *identity.Resolver {
	return identity.NewResolver(store)
}

func newScoreboardAuth(
	cfg *config.Config,
	store *documentStore,
	resolver *identity.Resolver,
	locker processinglock.Locker,
	msgProvider *messageprovider.Provider,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*auth.Service, error) {
	svc, err := auth.NewService(store, resolver, locker, msgProvider, m, logger, auth.Config{
		TokenSecret:         []byte(cfg.Auth.TokenSecret),
		TokenTTL:            cfg.Auth.TokenTTL,
		TokenIssuer:         cfg.Auth.TokenIssuer,
		BcryptCost:          cfg.Auth.BcryptCost,
		SignInRatePerMinute: cfg.Auth.SignInRatePerMinute,
		SignInBurst:         cfg.Auth.SignInBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth service failed: %w", err)
	}
	return svc, nil
}

func newScoreboardFormatter(cfg *config.Config) (*scores.LocaleFormatter, error) {
	formatter, err := scores.NewLocaleFormatter(assets.LocalesYAML, cfg.Scores.Locale, cfg.Scores.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load locales failed: %w", err)
	}
	return formatter, nil
}

func newScoreboardSubmitter(
	cfg *config.Config,
	store *documentStore,
	formatter *scores.LocaleFormatter,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *scores.Submitter {
	return scores.NewSubmitter(store, formatter, logger,
		scores.WithStatsReloader(notifier),
		scores.WithLeaderboardReloader(notifier),
		scores.WithTopN(cfg.Scores.TopN),
		scores.WithMetrics(m),
	)
}

func newScoreboardHealthChecks(store *documentStore, client di.DataValkeyClient) healthChecks {
	checks := healthChecks{}
	if store.ping != nil {
		checks["db"] = store.ping
	}
	if client.Enabled() {
		checks["valkey"] = func(ctx context.Context) error {
			return valkeyx.Ping(ctx, client.Client)
		}
	}
	return checks
}

func newScoreboardHTTPMux(
	cfg *config.Config,
	authService *auth.Service,
	submitter *scores.Submitter,
	board *leaderboard.Service,
	hub *notify.Hub,
	m *metrics.Metrics,
	checks healthChecks,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	httpapi.Register(mux, httpapi.Deps{
		Auth:          authService,
		Scores:        submitter,
		Leaderboard:   board,
		Events:        hub,
		Metrics:       m,
		MetricsAPIKey: cfg.Metrics.APIKey,
		HealthChecks:  checks,
		DefaultWindow: cfg.Scores.DefaultWindow,
		Messages:      msgProvider,
		Logger:        logger,
	})
	return mux
}

func newScoreboardHTTPServer(cfg *config.Config, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return httpserver.NewServer(addr, mux, httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
		Middlewares: []httpserver.Middleware{
			otelhttp.NewMiddleware(config.ServiceName),
			httpapi.AccessLog(logger, "/health", "/metrics"),
		},
	})
}

// newScoreboardGRPCHealth: GRPC_HEALTH_PORT 가 0 이면 nil.
func newScoreboardGRPCHealth(cfg *config.Config, logger *slog.Logger) *grpcserver.HealthServer {
	if cfg.GRPC.HealthPort == 0 {
		return nil
	}
	return grpcserver.NewHealthServer(cfg.Server.Host, cfg.GRPC.HealthPort, logger)
}

func newScoreboardServerApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	tracing *telemetry.Provider,
	grpcHealth *grpcserver.HealthServer,
) *bootstrap.ServerApp {
	logger.Info("scoreboard_app_ready",
		"tracing", tracing.IsEnabled(),
		"db_driver", cfg.Database.Driver,
		"cache_backend", cfg.Cache.Backend,
		"valkey", cfg.Redis.Enabled,
	)

	var tasks []bootstrap.BackgroundTask
	if grpcHealth != nil {
		tasks = append(tasks, bootstrap.BackgroundTask{
			Name:        "grpc_health",
			ErrorLogKey: "grpc_health_failed",
			Run:         grpcHealth.Run,
		})
	}
	return bootstrap.NewServerApp(config.ServiceName, logger, server, cfg.ServerTuning.ShutdownTimeout, tasks...)
}
