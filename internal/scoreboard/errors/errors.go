// Package errors: 스코어보드 도메인 에러 타입들을 정의한다.
// 인프라 에러(RedisError, DatabaseError, LockError)는 common/errors 패키지를 직접 사용한다.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// InvalidArgumentError: 요청 값이 비었거나 형식이 잘못되었을 때 발생하는 에러
type InvalidArgumentError struct {
	Message string
}

func (e InvalidArgumentError) Error() string {
	if e.Message == "" {
		return "invalid argument"
	}
	return e.Message
}

// NotFoundError: 조회 대상 문서가 없을 때 발생하는 에러.
// Message 는 사용자에게 그대로 노출된다.
type NotFoundError struct {
	Message string
}

func (e NotFoundError) Error() string {
	if e.Message == "" {
		return "not found"
	}
	return e.Message
}

// IntegrityError: 서로 연결되어야 할 문서가 빠져 있을 때 발생하는 에러 (예: 로그인 사용자의 프로필 없음)
type IntegrityError struct {
	Collection string
	ID         string
}

func (e IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: missing %s/%s", e.Collection, e.ID)
}

// AlreadyExistsError: 가입 시 사용자명 또는 이메일이 이미 사용 중일 때 발생하는 에러
type AlreadyExistsError struct {
	Field   string
	Message string
}

func (e AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

// InvalidCredentialsError: 자격 증명이 없거나 비밀번호가 틀렸을 때 발생하는 에러.
// 어느 쪽인지는 구분하지 않는다.
type InvalidCredentialsError struct{}

func (e InvalidCredentialsError) Error() string { return "invalid credentials" }

// RateLimitedError: 로그인 시도 한도를 넘었을 때 발생하는 에러
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %s", e.RetryAfter.Round(time.Second))
}

// UnauthenticatedError: 세션 토큰이 없거나 검증에 실패했을 때 발생하는 에러
type UnauthenticatedError struct {
	Reason string
}

func (e UnauthenticatedError) Error() string {
	if e.Reason == "" {
		return "unauthenticated"
	}
	return "unauthenticated: " + e.Reason
}

// IsExpectedUserBehavior: 사용자 입력 실수로 생긴 에러인지 판별한다. 로그 레벨 결정에 쓴다.
func IsExpectedUserBehavior(err error) bool {
	if err == nil {
		return false
	}
	var (
		invalid  InvalidArgumentError
		notFound NotFoundError
		exists   AlreadyExistsError
		creds    InvalidCredentialsError
		limited  RateLimitedError
		unauthed UnauthenticatedError
	)
	return errors.As(err, &invalid) ||
		errors.As(err, &notFound) ||
		errors.As(err, &exists) ||
		errors.As(err, &creds) ||
		errors.As(err, &limited) ||
		errors.As(err, &unauthed)
}
