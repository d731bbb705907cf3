package valkeyx

import (
	cerrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/errors"
)

// WrapRedisError: Valkey 에러를 공통 RedisError 로 감싼다. nil 은 그대로 nil.
func WrapRedisError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.RedisError{Operation: operation, Err: err}
}
