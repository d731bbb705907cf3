package config

import (
	"fmt"
	"strings"
	"time"
)

// ReadServerConfigFromEnv: HTTP 서버 호스트와 포트 설정을 환경 변수에서 읽어옵니다.
func ReadServerConfigFromEnv(defaultPort int) (ServerConfig, error) {
	port, err := IntFromEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read SERVER_PORT failed: %w", err)
	}

	return ServerConfig{
		Host: StringFromEnv("SERVER_HOST", "0.0.0.0"),
		Port: port,
	}, nil
}

// ReadServerTuningConfigFromEnv: HTTP 서버 튜닝 설정(Timeouts, Limits)을 환경 변수에서 읽어옵니다.
func ReadServerTuningConfigFromEnv() (ServerTuningConfig, error) {
	readHeaderTimeout, err := DurationSecondsFromEnv("SERVER_READ_HEADER_TIMEOUT_SECONDS", 5)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_READ_HEADER_TIMEOUT_SECONDS failed: %w", err)
	}

	// 명시적으로 0을 주면 비활성화
	idleTimeout, err := DurationSecondsFromEnv("SERVER_IDLE_TIMEOUT_SECONDS", 90)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_IDLE_TIMEOUT_SECONDS failed: %w", err)
	}

	maxHeaderBytes, err := IntFromEnv("SERVER_MAX_HEADER_BYTES", 1<<20)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_MAX_HEADER_BYTES failed: %w", err)
	}
	if maxHeaderBytes < 0 {
		return ServerTuningConfig{}, fmt.Errorf("invalid SERVER_MAX_HEADER_BYTES: %d", maxHeaderBytes)
	}

	shutdownTimeout, err := DurationSecondsFromEnv("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_SHUTDOWN_TIMEOUT_SECONDS failed: %w", err)
	}

	return ServerTuningConfig{
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		ShutdownTimeout:   shutdownTimeout,
	}, nil
}

// ReadRedisConfigFromEnv: Valkey 연결 설정을 읽어옵니다.
// host/port/password 는 CACHE_* 가 REDIS_* 보다 우선합니다.
func ReadRedisConfigFromEnv(defaultEnabled bool) (RedisConfig, error) {
	enabled, err := BoolFromEnvFirstNonEmpty([]string{"VALKEY_ENABLED", "REDIS_ENABLED"}, defaultEnabled)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read VALKEY_ENABLED failed: %w", err)
	}

	port, err := IntFromEnvFirstNonEmpty([]string{"CACHE_PORT", "REDIS_PORT"}, 6379)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis port failed: %w", err)
	}

	db, err := IntFromEnv("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_DB failed: %w", err)
	}

	return RedisConfig{
		Enabled:     enabled,
		Host:        StringFromEnvFirstNonEmpty([]string{"CACHE_HOST", "REDIS_HOST"}, "localhost"),
		Port:        port,
		Password:    StringFromEnvFirstNonEmpty([]string{"CACHE_PASSWORD", "REDIS_PASSWORD"}, ""),
		DB:          db,
		DialTimeout: 10 * time.Second,
	}, nil
}

// ReadLogConfigFromEnv: 로그 파일 출력 설정(디렉터리, 크기, 백업 수)을 환경 변수에서 읽어옵니다.
func ReadLogConfigFromEnv() (LogConfig, error) {
	dir := StringFromEnv("LOG_DIR", "")
	if strings.TrimSpace(dir) == "" {
		return LogConfig{}, nil
	}

	maxSizeMB, err := positiveIntFromEnv("LOG_FILE_MAX_SIZE_MB", 1)
	if err != nil {
		return LogConfig{}, err
	}
	maxBackups, err := positiveIntFromEnv("LOG_FILE_MAX_BACKUPS", 30)
	if err != nil {
		return LogConfig{}, err
	}
	maxAgeDays, err := positiveIntFromEnv("LOG_FILE_MAX_AGE_DAYS", 7)
	if err != nil {
		return LogConfig{}, err
	}

	compress, err := BoolFromEnv("LOG_FILE_COMPRESS", true)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_COMPRESS failed: %w", err)
	}

	return LogConfig{
		Dir:        dir,
		MaxSizeMB:  maxSizeMB,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAgeDays,
		Compress:   compress,
	}, nil
}

func positiveIntFromEnv(key string, defaultValue int) (int, error) {
	value, err := IntFromEnv(key, defaultValue)
	if err != nil {
		return 0, fmt.Errorf("read %s failed: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: %d", key, value)
	}
	return value, nil
}

// ReadTelemetryConfigFromEnv: OTEL_* 환경 변수에서 추적 설정을 읽어옵니다.
func ReadTelemetryConfigFromEnv(defaultServiceName string) (TelemetryConfig, error) {
	enabled, err := BoolFromEnv("OTEL_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_ENABLED failed: %w", err)
	}

	insecure, err := BoolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_EXPORTER_OTLP_INSECURE failed: %w", err)
	}

	sampleRate, err := Float64FromEnv("OTEL_SAMPLE_RATE", 1.0)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_SAMPLE_RATE failed: %w", err)
	}
	if sampleRate < 0 || sampleRate > 1 {
		return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %v", sampleRate)
	}

	return TelemetryConfig{
		Enabled:      enabled,
		ServiceName:  StringFromEnv("OTEL_SERVICE_NAME", defaultServiceName),
		Environment:  StringFromEnvFirstNonEmpty([]string{"OTEL_ENVIRONMENT", "DEPLOYMENT_ENV"}, "development"),
		OTLPEndpoint: StringFromEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure: insecure,
		SampleRate:   sampleRate,
	}, nil
}
