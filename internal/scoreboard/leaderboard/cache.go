package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/cache"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/valkeyx"
)

// 캐시 백엔드 이름 (CACHE_BACKEND)
const (
	BackendValkey = "valkey"
	BackendMemory = "memory"
	BackendNone   = "none"
)

const memoryCacheEntries = 1024

// Cache 는 직렬화된 조회 결과를 키 단위로 보관한다. TTL 은 구현체가 정한다.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// NewCache: backend 이름에 맞는 캐시. valkey 는 client 가 있어야 한다.
func NewCache(backend string, client valkey.Client, prefix string, ttl time.Duration) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendValkey:
		if client == nil {
			return nil, fmt.Errorf("cache backend %q requires a valkey client", backend)
		}
		return NewValkeyCache(client, prefix, ttl), nil
	case BackendMemory:
		return NewMemoryCache(memoryCacheEntries, ttl), nil
	case "", BackendNone:
		return NoopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// ValkeyCache: SET EX / GET / DEL 기반 캐시
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyCache: 키는 prefix:key 로 저장된다.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	return &ValkeyCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	storeKey := valkeyx.BuildKey(c.prefix, key)
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(storeKey).Build()).AsBytes()
	if valkeyx.IsNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, valkeyx.WrapRedisError("get "+storeKey, err)
	}
	return raw, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, value []byte) error {
	storeKey := valkeyx.BuildKey(c.prefix, key)
	cmd := c.client.B().Set().Key(storeKey).Value(valkey.BinaryString(value)).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return valkeyx.WrapRedisError("set "+storeKey, err)
	}
	return nil
}

func (c *ValkeyCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	storeKeys := make([]string, len(keys))
	for i, key := range keys {
		storeKeys[i] = valkeyx.BuildKey(c.prefix, key)
	}
	if err := c.client.Do(ctx, c.client.B().Del().Key(storeKeys...).Build()).Error(); err != nil {
		return valkeyx.WrapRedisError("del", err)
	}
	return nil
}

// MemoryCache: 프로세스 내부 TTL LRU 캐시
type MemoryCache struct {
	lru *cache.TTLLRUCache[[]byte]
}

// NewMemoryCache: maxEntries 개까지 ttl 동안 보관한다.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: cache.NewTTLLRUCache[[]byte](maxEntries, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.lru.Set(key, value)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.lru.Delete(key)
	}
	return nil
}

// NoopCache 는 항상 miss 다.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, []byte) error         { return nil }
func (NoopCache) Delete(context.Context, ...string) error           { return nil }
