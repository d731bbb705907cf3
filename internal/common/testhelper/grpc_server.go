// Package testhelper 는 테스트 전용 서버/클라이언트 헬퍼를 둔다.
package testhelper

import (
	"context"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
)

// StartTestGRPCServer: 127.0.0.1 임의 포트에 server 를 띄우고 주소와 stop 함수를 돌려준다.
// server 가 nil 이면 grpc.NewServer() 를 쓴다. 테스트 종료 시 자동으로 멈춘다.
func StartTestGRPCServer(t *testing.T, server *grpc.Server) (addr string, stop func()) {
	t.Helper()

	lis, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	if server == nil {
		server = grpc.NewServer()
	}

	go func() {
		_ = server.Serve(lis)
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			server.Stop()
			_ = lis.Close()
		})
	}
	t.Cleanup(stop)
	return lis.Addr().String(), stop
}
