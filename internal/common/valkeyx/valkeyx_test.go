package valkeyx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/config"
)

func TestBuildKey(t *testing.T) {
	if got := BuildKey("scoreboard:lb", " weekly ", "10"); got != "scoreboard:lb:weekly:10" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := BuildKey("plain"); got != "plain" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestConfigFromRedis(t *testing.T) {
	cfg := ConfigFromRedis(config.RedisConfig{Host: "cache", Port: 6380, DB: 2, Password: "pw"})
	if cfg.Addr != "cache:6380" || cfg.DB != 2 || cfg.Password != "pw" || !cfg.DisableCache {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestNewClient_EmptyAddr(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}

func TestPingAndIsNil(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(Config{Addr: mr.Addr(), DisableCache: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { Close(client) })

	ctx := context.Background()
	if err := Ping(ctx, client); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	getErr := client.Do(ctx, client.B().Get().Key("missing").Build()).Error()
	if !IsNil(getErr) {
		t.Fatalf("expected nil error, got %v", getErr)
	}
	if !IsNil(fmt.Errorf("wrapped: %w", getErr)) {
		t.Fatal("expected wrapped nil to be detected")
	}
	if IsNil(errors.New("other")) {
		t.Fatal("unexpected nil detection")
	}
}

func TestPing_NilClient(t *testing.T) {
	var client valkey.Client
	if err := Ping(context.Background(), client); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestWrapRedisError(t *testing.T) {
	if WrapRedisError("get", nil) != nil {
		t.Fatal("expected nil")
	}
	base := errors.New("boom")
	err := WrapRedisError("get", base)
	var redisErr cerrors.RedisError
	if !errors.As(err, &redisErr) || redisErr.Operation != "get" {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped error to unwrap to base")
	}
}
