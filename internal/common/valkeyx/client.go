// Package valkeyx 는 Valkey 클라이언트 생성, 연결 점검, 키 조합 같은 공통 헬퍼를 제공한다.
package valkeyx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/config"
)

// Config: Valkey 클라이언트 연결 설정
type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration

	// DisableCache: 클라이언트 사이드 캐싱 비활성화. miniredis 는 CLIENT TRACKING 을 지원하지 않는다.
	DisableCache bool

	UseTLS bool
}

// ConfigFromRedis: 공통 RedisConfig 를 클라이언트 설정으로 변환한다.
func ConfigFromRedis(cfg config.RedisConfig) Config {
	return Config{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		DisableCache: true,
	}
}

// NewClient: 설정으로 Valkey 클라이언트를 만든다.
func NewClient(cfg Config) (valkey.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("valkey addr is empty")
	}

	opts := valkey.ClientOption{
		InitAddress:  []string{addr},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: cfg.DisableCache,
	}
	if cfg.UseTLS {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}
	if cfg.DialTimeout > 0 {
		opts.Dialer.Timeout = cfg.DialTimeout
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client failed addr=%s: %w", addr, err)
	}
	return client, nil
}

// Ping: PING 으로 연결 상태를 점검한다.
func Ping(ctx context.Context, client valkey.Client) error {
	if client == nil {
		return errors.New("valkey client is nil")
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return WrapRedisError("ping", err)
	}
	return nil
}

// IsNil: 래핑된 에러까지 풀어서 Valkey nil 응답(키 없음)인지 확인한다.
func IsNil(err error) bool {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if valkey.IsValkeyNil(cur) {
			return true
		}
	}
	return false
}

// Close: nil 이 아니면 연결을 닫는다.
func Close(client valkey.Client) {
	if client != nil {
		client.Close()
	}
}
