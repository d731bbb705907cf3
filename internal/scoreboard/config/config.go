// Package config 는 스코어보드 서비스 설정을 환경 변수에서 읽는다.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // 컨테이너 이미지에 zoneinfo 가 없어도 SCORES_TIMEZONE 을 읽는다

	"golang.org/x/crypto/bcrypt"

	commonconfig "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// ServiceName: 로그 파일, 추적 서비스명 기본값
const ServiceName = "scoreboard"

// DB 드라이버 (DB_DRIVER)
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DBDriverMemory   = "memory"
)

// 캐시 백엔드 (CACHE_BACKEND)
const (
	CacheBackendValkey = "valkey"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// ServerConfig: HTTP 서버 설정 alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// RedisConfig: Valkey 연결 설정 alias
type RedisConfig = commonconfig.RedisConfig

// LogConfig: 파일 로그 설정 alias
type LogConfig = commonconfig.LogConfig

// GRPCConfig: gRPC 헬스 서버 설정. HealthPort 가 0 이면 끈다.
type GRPCConfig struct {
	HealthPort int
}

// DatabaseConfig: 문서 저장소 DB 설정
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	Name       string
	User       string
	Password   string
	SSLMode    string
	SQLitePath string // sqlite 전용, ":memory:" 가능

	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	ConnectMaxAttempts int
}

// DSN: 드라이버별 연결 문자열. memory 드라이버는 빈 문자열.
func (c DatabaseConfig) DSN() string {
	switch c.Driver {
	case DBDriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.Name,
			c.SSLMode,
		)
	case DBDriverSQLite:
		if c.SQLitePath == ":memory:" {
			return "file::memory:?cache=shared"
		}
		return c.SQLitePath
	default:
		return ""
	}
}

// CacheConfig: 조회 캐시 설정
type CacheConfig struct {
	Backend string
	TTL     time.Duration
}

// EventsConfig: 새로 고침 이벤트 스트림 설정
type EventsConfig struct {
	StreamKey    string
	StreamMaxLen int64
}

// ScoresConfig: 점수 기록 설정
type ScoresConfig struct {
	TopN          int
	DefaultWindow model.Window
	Locale        string
	TimeZone      *time.Location
}

// AuthConfig: 세션 토큰과 로그인 제한 설정
type AuthConfig struct {
	TokenSecret         string
	TokenTTL            time.Duration
	TokenIssuer         string
	BcryptCost          int
	SignInRatePerMinute float64
	SignInBurst         int
}

// LeaderboardConfig: 리더보드 조회 개수 설정
type LeaderboardConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// MetricsConfig: /metrics 보호 설정. APIKey 가 비어 있으면 공개.
type MetricsConfig struct {
	APIKey string
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	GRPC         GRPCConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Events       EventsConfig
	Scores       ScoresConfig
	Auth         AuthConfig
	Leaderboard  LeaderboardConfig
	Metrics      MetricsConfig
	Log          LogConfig
	Telemetry    commonconfig.TelemetryConfig
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := commonconfig.ReadServerConfigFromEnv(8080)
	if err != nil {
		return nil, fmt.Errorf("read server config failed: %w", err)
	}
	serverTuning, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read server tuning config failed: %w", err)
	}
	grpcCfg, err := readGRPCConfig()
	if err != nil {
		return nil, err
	}
	database, err := readDatabaseConfig()
	if err != nil {
		return nil, err
	}
	redisCfg, err := commonconfig.ReadRedisConfigFromEnv(false)
	if err != nil {
		return nil, fmt.Errorf("read redis config failed: %w", err)
	}
	cacheCfg, err := readCacheConfig(redisCfg.Enabled)
	if err != nil {
		return nil, err
	}
	events, err := readEventsConfig()
	if err != nil {
		return nil, err
	}
	scores, err := readScoresConfig()
	if err != nil {
		return nil, err
	}
	auth, err := readAuthConfig()
	if err != nil {
		return nil, err
	}
	leaderboard, err := readLeaderboardConfig()
	if err != nil {
		return nil, err
	}
	logCfg, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read log config failed: %w", err)
	}
	telemetry, err := commonconfig.ReadTelemetryConfigFromEnv(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("read telemetry config failed: %w", err)
	}
	// trace 가 켜져 있으면 로그에도 trace_id 를 남긴다
	logCfg.OTelCorrelation = telemetry.Enabled

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		GRPC:         grpcCfg,
		Database:     database,
		Redis:        redisCfg,
		Cache:        cacheCfg,
		Events:       events,
		Scores:       scores,
		Auth:         auth,
		Leaderboard:  leaderboard,
		Metrics:      MetricsConfig{APIKey: commonconfig.StringFromEnv("METRICS_API_KEY", "")},
		Log:          logCfg,
		Telemetry:    telemetry,
	}, nil
}

func readGRPCConfig() (GRPCConfig, error) {
	port, err := commonconfig.IntFromEnv("GRPC_HEALTH_PORT", 0)
	if err != nil {
		return GRPCConfig{}, fmt.Errorf("read GRPC_HEALTH_PORT failed: %w", err)
	}
	if port < 0 || port > 65535 {
		return GRPCConfig{}, fmt.Errorf("invalid GRPC_HEALTH_PORT: %d", port)
	}
	return GRPCConfig{HealthPort: port}, nil
}

func readDatabaseConfig() (DatabaseConfig, error) {
	driver := strings.ToLower(commonconfig.StringFromEnv("DB_DRIVER", DBDriverPostgres))
	switch driver {
	case DBDriverPostgres, DBDriverSQLite, DBDriverMemory:
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: %q", driver)
	}

	port, err := commonconfig.IntFromEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_PORT failed: %w", err)
	}
	maxOpen, err := commonconfig.IntFromEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_MAX_OPEN_CONNS failed: %w", err)
	}
	maxIdle, err := commonconfig.IntFromEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_MAX_IDLE_CONNS failed: %w", err)
	}
	maxLife, err := commonconfig.IntFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_CONN_MAX_LIFETIME_SECONDS failed: %w", err)
	}
	attempts, err := commonconfig.IntFromEnv("DB_CONNECT_MAX_ATTEMPTS", 5)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_CONNECT_MAX_ATTEMPTS failed: %w", err)
	}
	if attempts <= 0 {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_CONNECT_MAX_ATTEMPTS: %d", attempts)
	}

	return DatabaseConfig{
		Driver:             driver,
		Host:               commonconfig.StringFromEnv("DB_HOST", "localhost"),
		Port:               port,
		Name:               commonconfig.StringFromEnv("DB_NAME", "scoreboard"),
		User:               commonconfig.StringFromEnv("DB_USER", "scoreboard_app"),
		Password:           commonconfig.StringFromEnv("DB_PASSWORD", ""),
		SSLMode:            commonconfig.StringFromEnv("DB_SSLMODE", "disable"),
		SQLitePath:         commonconfig.StringFromEnv("DB_SQLITE_PATH", "scoreboard.db"),
		MaxOpenConns:       maxOpen,
		MaxIdleConns:       maxIdle,
		ConnMaxLifetimeSec: maxLife,
		ConnectMaxAttempts: attempts,
	}, nil
}

// CACHE_BACKEND 기본값은 Valkey 가 켜져 있으면 valkey, 아니면 memory.
func readCacheConfig(valkeyEnabled bool) (CacheConfig, error) {
	defaultBackend := CacheBackendMemory
	if valkeyEnabled {
		defaultBackend = CacheBackendValkey
	}
	backend := strings.ToLower(commonconfig.StringFromEnv("CACHE_BACKEND", defaultBackend))
	switch backend {
	case CacheBackendValkey:
		if !valkeyEnabled {
			return CacheConfig{}, errors.New("CACHE_BACKEND=valkey requires VALKEY_ENABLED=true")
		}
	case CacheBackendMemory, CacheBackendNone:
	default:
		return CacheConfig{}, fmt.Errorf("invalid CACHE_BACKEND: %q", backend)
	}

	ttl, err := commonconfig.DurationSecondsFromEnv("CACHE_TTL_SECONDS", 30)
	if err != nil {
		return CacheConfig{}, fmt.Errorf("read CACHE_TTL_SECONDS failed: %w", err)
	}
	if ttl <= 0 && backend != CacheBackendNone {
		return CacheConfig{}, fmt.Errorf("invalid CACHE_TTL_SECONDS: %v", ttl)
	}
	return CacheConfig{Backend: backend, TTL: ttl}, nil
}

func readEventsConfig() (EventsConfig, error) {
	maxLen, err := commonconfig.Int64FromEnv("EVENTS_STREAM_MAX_LEN", 10_000)
	if err != nil {
		return EventsConfig{}, fmt.Errorf("read EVENTS_STREAM_MAX_LEN failed: %w", err)
	}
	return EventsConfig{
		StreamKey:    commonconfig.StringFromEnv("EVENTS_STREAM_KEY", "scoreboard:events"),
		StreamMaxLen: maxLen,
	}, nil
}

func readScoresConfig() (ScoresConfig, error) {
	topN, err := commonconfig.IntFromEnv("SCORES_TOP_N", model.DefaultTopScores)
	if err != nil {
		return ScoresConfig{}, fmt.Errorf("read SCORES_TOP_N failed: %w", err)
	}
	if topN <= 0 {
		return ScoresConfig{}, fmt.Errorf("invalid SCORES_TOP_N: %d", topN)
	}

	rawWindow := commonconfig.StringFromEnv("SCORES_DEFAULT_WINDOW", string(model.DefaultWindow))
	window, ok := model.ParseWindow(rawWindow)
	if !ok {
		return ScoresConfig{}, fmt.Errorf("invalid SCORES_DEFAULT_WINDOW: %q", rawWindow)
	}

	tzName := commonconfig.StringFromEnv("SCORES_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return ScoresConfig{}, fmt.Errorf("read SCORES_TIMEZONE failed: %w", err)
	}

	return ScoresConfig{
		TopN:          topN,
		DefaultWindow: window,
		Locale:        commonconfig.StringFromEnv("SCORES_LOCALE", "en-US"),
		TimeZone:      loc,
	}, nil
}

func readAuthConfig() (AuthConfig, error) {
	secret := commonconfig.StringFromEnv("AUTH_TOKEN_SECRET", "")
	if secret == "" {
		return AuthConfig{}, errors.New("AUTH_TOKEN_SECRET is required")
	}

	ttl, err := commonconfig.DurationSecondsFromEnv("AUTH_TOKEN_TTL_SECONDS", 24*60*60)
	if err != nil {
		return AuthConfig{}, fmt.Errorf("read AUTH_TOKEN_TTL_SECONDS failed: %w", err)
	}
	if ttl <= 0 {
		return AuthConfig{}, fmt.Errorf("invalid AUTH_TOKEN_TTL_SECONDS: %v", ttl)
	}

	cost, err := commonconfig.IntFromEnv("AUTH_BCRYPT_COST", bcrypt.DefaultCost)
	if err != nil {
		return AuthConfig{}, fmt.Errorf("read AUTH_BCRYPT_COST failed: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return AuthConfig{}, fmt.Errorf("invalid AUTH_BCRYPT_COST: %d", cost)
	}

	rate, err := commonconfig.Float64FromEnv("AUTH_SIGNIN_RATE_PER_MINUTE", 10)
	if err != nil {
		return AuthConfig{}, fmt.Errorf("read AUTH_SIGNIN_RATE_PER_MINUTE failed: %w", err)
	}
	if rate <= 0 {
		return AuthConfig{}, fmt.Errorf("invalid AUTH_SIGNIN_RATE_PER_MINUTE: %v", rate)
	}

	burst, err := commonconfig.IntFromEnv("AUTH_SIGNIN_BURST", 5)
	if err != nil {
		return AuthConfig{}, fmt.Errorf("read AUTH_SIGNIN_BURST failed: %w", err)
	}
	if burst <= 0 {
		return AuthConfig{}, fmt.Errorf("invalid AUTH_SIGNIN_BURST: %d", burst)
	}

	return AuthConfig{
		TokenSecret:         secret,
		TokenTTL:            ttl,
		TokenIssuer:         commonconfig.StringFromEnv("AUTH_TOKEN_ISSUER", ServiceName),
		BcryptCost:          cost,
		SignInRatePerMinute: rate,
		SignInBurst:         burst,
	}, nil
}

func readLeaderboardConfig() (LeaderboardConfig, error) {
	def, err := commonconfig.IntFromEnv("LEADERBOARD_DEFAULT_LIMIT", 10)
	if err != nil {
		return LeaderboardConfig{}, fmt.Errorf("read LEADERBOARD_DEFAULT_LIMIT failed: %w", err)
	}
	maxLimit, err := commonconfig.IntFromEnv("LEADERBOARD_MAX_LIMIT", 100)
	if err != nil {
		return LeaderboardConfig{}, fmt.Errorf("read LEADERBOARD_MAX_LIMIT failed: %w", err)
	}
	if def <= 0 || maxLimit <= 0 || def > maxLimit {
		return LeaderboardConfig{}, fmt.Errorf("invalid leaderboard limits: default=%d max=%d", def, maxLimit)
	}
	return LeaderboardConfig{DefaultLimit: def, MaxLimit: maxLimit}, nil
}
