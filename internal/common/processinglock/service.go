// Package processinglock 은 키 단위 배타 락을 제공한다.
// Valkey 가 있으면 SET NX + 토큰 비교 삭제, 없으면 프로세스 내부 락을 쓴다.
package processinglock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/valkeyx"
)

// ErrAlreadyHeld: 다른 소유자가 이미 락을 잡고 있음
var ErrAlreadyHeld = errors.New("lock already held")

// Locker 는 key 에 대한 락을 잡고 해제 함수를 돌려준다.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyFunc: 논리 키를 저장소 키로 바꾼다.
type KeyFunc func(key string) string

// 토큰이 일치할 때만 삭제한다.
var releaseScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Service 는 Valkey 기반 Locker 다. 락은 ttl 뒤 자동 만료된다.
type Service struct {
	client  valkey.Client
	logger  *slog.Logger
	keyFunc KeyFunc
	ttl     time.Duration
}

// New: Service 를 만든다. keyFunc 가 nil 이면 키를 그대로 쓴다.
func New(client valkey.Client, logger *slog.Logger, keyFunc KeyFunc, ttl time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if keyFunc == nil {
		keyFunc = func(key string) string { return key }
	}
	return &Service{client: client, logger: logger, keyFunc: keyFunc, ttl: ttl}
}

// Acquire: SET NX EX 로 락을 잡는다. 이미 있으면 LockError(ErrAlreadyHeld 를 감쌈).
func (s *Service) Acquire(ctx context.Context, key string) (func(), error) {
	storeKey := s.keyFunc(key)
	token := uuid.NewString()

	cmd := s.client.B().Set().Key(storeKey).Value(token).Nx().Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if valkeyx.IsNil(err) {
			return nil, heldError(key)
		}
		return nil, valkeyx.WrapRedisError("lock_acquire", err)
	}
	s.logger.DebugContext(ctx, "lock_acquired", "key", storeKey)

	var once sync.Once
	return func() {
		once.Do(func() {
			// 호출자 ctx 가 이미 취소되었어도 해제는 시도한다
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := releaseScript.Exec(releaseCtx, s.client, []string{storeKey}, []string{token}).Error(); err != nil {
				s.logger.WarnContext(ctx, "lock_release_failed", "key", storeKey, "err", err)
			}
		})
	}, nil
}

// IsHeld: 락이 현재 존재하는지 확인한다.
func (s *Service) IsHeld(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(s.keyFunc(key)).Build()).AsInt64()
	if err != nil {
		return false, valkeyx.WrapRedisError("lock_exists", err)
	}
	return n > 0, nil
}

// Local 은 단일 프로세스용 Locker 다.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal: Local 을 만든다.
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, heldError(key)
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

func heldError(key string) error {
	return cerrors.LockError{Key: key, Description: "lock already held", Err: ErrAlreadyHeld}
}
