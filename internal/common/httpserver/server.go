package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Middleware: http.Handler 래퍼
type Middleware func(http.Handler) http.Handler

// ServerOptions: http.Server 생성 옵션
type ServerOptions struct {
	UseH2C            bool
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Middlewares 는 앞에서부터 바깥쪽으로 감싼다. h2c 는 항상 가장 바깥이다.
	Middlewares []Middleware
}

// NewServer: 옵션을 적용한 http.Server 를 만든다. ReadHeaderTimeout 기본값은 5초.
func NewServer(addr string, handler http.Handler, opts ServerOptions) *http.Server {
	if handler == nil {
		handler = http.NewServeMux()
	}

	for i := len(opts.Middlewares) - 1; i >= 0; i-- {
		if mw := opts.Middlewares[i]; mw != nil {
			handler = mw(handler)
		}
	}
	if opts.UseH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	readHeaderTimeout := opts.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if opts.IdleTimeout > 0 {
		server.IdleTimeout = opts.IdleTimeout
	}
	if opts.MaxHeaderBytes > 0 {
		server.MaxHeaderBytes = opts.MaxHeaderBytes
	}
	return server
}

// Serve: ctx 가 끝날 때까지 서버를 실행하고 shutdownTimeout 안에 graceful shutdown 한다.
func Serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return closedOrWrapped(err, "http server listen failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return closedOrWrapped(<-errCh, "http server stopped with error")
	}
}

func closedOrWrapped(err error, msg string) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
