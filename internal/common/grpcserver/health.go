// Package grpcserver 는 gRPC health 서비스를 노출하는 보조 서버를 둔다.
package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer 는 grpc.health.v1 서비스만 올린 gRPC 서버다.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
	addr   string
}

// NewHealthServer: otelgrpc 핸들러를 붙인 서버를 만든다. 초기 상태는 SERVING.
func NewHealthServer(host string, port int, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &HealthServer{
		server: srv,
		health: hs,
		logger: logger,
		addr:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
}

// GRPC: 내부 grpc.Server (테스트 리스너 연결용)
func (s *HealthServer) GRPC() *grpc.Server { return s.server }

// SetServing: 전체 서비스 상태를 바꾼다.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Run: ctx 가 끝날 때까지 서빙하고 GracefulStop 한다.
func (s *HealthServer) Run(ctx context.Context) error {
	lis, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc health listen failed addr=%s: %w", s.addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(lis)
	}()
	s.logger.Info("grpc_health_start", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc health serve failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.health.Shutdown()
		s.server.GracefulStop()
		<-errCh
		return nil
	}
}
