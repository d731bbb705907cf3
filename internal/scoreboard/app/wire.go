//go:build wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/config"
)

//go:generate go run github.com/google/wire/cmd/wire@v0.7.0
func Initialize(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*bootstrap.ServerApp, func(), error) {
	wire.Build(
		scoreboardProviderSet,
	)
	return nil, nil, nil
}
