package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	commonconfig "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/config"
)

// NewLogger: stdout 으로 출력하는 tint 기반 기본 로거
func NewLogger() *slog.Logger {
	return newTintLogger(os.Stdout, false)
}

func newTintLogger(w io.Writer, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    noColor,
	}))
}

// EnableFileLogging: stdout 과 로테이션 파일에 함께 쓰는 로거로 전환한다.
// cfg.OTelCorrelation 이면 trace_id/span_id 를 덧붙인다. Dir 이 비어 있으면 에러.
func EnableFileLogging(cfg commonconfig.LogConfig, fileName string) (*slog.Logger, error) {
	logDir := strings.TrimSpace(cfg.Dir)
	if logDir == "" {
		return nil, fmt.Errorf("log dir is empty")
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	handler := newTintLogger(io.MultiWriter(os.Stdout, logFile), true).Handler()
	if cfg.OTelCorrelation {
		handler = NewOTelHandler(handler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("file_logging_enabled",
		slog.String("path", logFile.Filename),
		slog.Bool("otel_correlation", cfg.OTelCorrelation),
	)
	return logger, nil
}
