package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/app"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/config"
)

// Version: 빌드 시 ldflags로 주입됨 (예: -ldflags="-X main.Version=1.0.0")
var Version = "dev"

func main() {
	health.Init(Version)

	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	finalLogger, err := bootstrap.RunServiceEntrypoint(
		context.Background(),
		logger,
		"scoreboard.log",
		config.LoadFromEnv,
		func(cfg *config.Config) config.LogConfig { return cfg.Log },
		app.Initialize,
	)
	if err != nil {
		finalLogger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
