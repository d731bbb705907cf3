package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/httpserver"
)

// BackgroundTask 는 HTTP 서버와 같은 수명으로 도는 작업이다.
type BackgroundTask struct {
	Name        string
	ErrorLogKey string
	Run         func(ctx context.Context) error
}

// RunHTTPServer: SIGINT/SIGTERM 또는 ctx 취소까지 서버와 작업을 errgroup 으로 실행한다.
// 하나가 실패하면 나머지도 취소된다.
func RunHTTPServer(
	ctx context.Context,
	logger *slog.Logger,
	service string,
	server *http.Server,
	shutdownTimeout time.Duration,
	backgroundTasks ...BackgroundTask,
) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)

	for _, task := range backgroundTasks {
		if task.Run == nil {
			continue
		}
		g.Go(func() error {
			if err := task.Run(gctx); err != nil {
				logKey := task.ErrorLogKey
				if logKey == "" {
					logKey = "background_task_failed"
				}
				logger.Error(logKey, "task", task.Name, "err", err)
				return fmt.Errorf("%s failed: %w", task.Name, err)
			}
			return nil
		})
	}

	logger.Info("server_start", "service", service, "addr", server.Addr)
	g.Go(func() error {
		if err := httpserver.Serve(gctx, server, shutdownTimeout); err != nil {
			return fmt.Errorf("http server serve failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run http server failed: %w", err)
	}
	logger.Info("server_stopped", "service", service)
	return nil
}
