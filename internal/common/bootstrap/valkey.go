package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	commonconfig "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/di"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/valkeyx"
)

// NewAndPingDataValkeyClient: Valkey 클라이언트를 만들고 PING 으로 확인한다.
// cfg.Enabled 가 false 면 nil 클라이언트와 no-op cleanup 을 돌려준다.
func NewAndPingDataValkeyClient(
	ctx context.Context,
	cfg commonconfig.RedisConfig,
	logger *slog.Logger,
) (di.DataValkeyClient, func(), error) {
	if !cfg.Enabled {
		logger.Info("valkey_disabled")
		return di.DataValkeyClient{}, func() {}, nil
	}

	client, err := valkeyx.NewClient(valkeyx.ConfigFromRedis(cfg))
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("create valkey client failed: %w", err)
	}

	closeFn := func() {
		client.Close()
		logger.Debug("valkey_client_closed")
	}

	if pingErr := valkeyx.Ping(ctx, client); pingErr != nil {
		closeFn()
		return di.DataValkeyClient{}, nil, fmt.Errorf("valkey ping failed: %w", pingErr)
	}
	return di.DataValkeyClient{Client: client}, closeFn, nil
}
