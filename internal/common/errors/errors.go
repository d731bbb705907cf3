// Package errors: 도메인과 무관한 인프라 에러 타입(Valkey, DB, 락)을 정의한다.
// 도메인 에러는 scoreboard/errors 패키지에 있다.
package errors

import "fmt"

// RedisError: Valkey 작업 도중 발생한 에러
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("redis error operation=%s", e.Operation)
	}
	return fmt.Sprintf("redis error operation=%s: %v", e.Operation, e.Err)
}

func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: 데이터베이스 작업 도중 발생한 에러
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("db error operation=%s", e.Operation)
	}
	return fmt.Sprintf("db error operation=%s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// LockError: 분산 락 획득 실패
type LockError struct {
	Key         string
	Description string
	Err         error
}

func (e LockError) Unwrap() error { return e.Err }

func (e LockError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "failed to acquire lock"
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s key=%s", msg, e.Key)
	}
	return msg
}
