package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var errInvalidBool = errors.New("expected one of true/1/yes/y/false/0/no/n")

// firstEnv: keys 순서대로 조회하여 공백이 아닌 첫 번째 값을 반환합니다.
func firstEnv(keys []string) (key string, value string, ok bool) {
	for _, k := range keys {
		raw, found := os.LookupEnv(k)
		if !found {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		return k, raw, true
	}
	return "", "", false
}

func parseFirst[T any](keys []string, defaultValue T, kind string, parse func(string) (T, error)) (T, error) {
	key, raw, ok := firstEnv(keys)
	if !ok {
		return defaultValue, nil
	}
	value, err := parse(raw)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("invalid %s env %s=%q: %w", kind, key, raw, err)
	}
	return value, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, errInvalidBool
	}
}

func parseInt64(raw string) (int64, error) { return strconv.ParseInt(raw, 10, 64) }

func parseFloat64(raw string) (float64, error) { return strconv.ParseFloat(raw, 64) }

// IntFromEnv: 환경 변수에서 정수 값을 읽어옵니다.
func IntFromEnv(key string, defaultValue int) (int, error) {
	return IntFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// IntFromEnvFirstNonEmpty: 여러 키 중 처음으로 값이 있는 정수를 반환합니다.
func IntFromEnvFirstNonEmpty(keys []string, defaultValue int) (int, error) {
	return parseFirst(keys, defaultValue, "int", strconv.Atoi)
}

// Int64FromEnv: 환경 변수에서 64비트 정수 값을 읽어옵니다.
func Int64FromEnv(key string, defaultValue int64) (int64, error) {
	return parseFirst([]string{key}, defaultValue, "int64", parseInt64)
}

// Float64FromEnv: 환경 변수에서 실수 값을 읽어옵니다.
func Float64FromEnv(key string, defaultValue float64) (float64, error) {
	return parseFirst([]string{key}, defaultValue, "float64", parseFloat64)
}

// BoolFromEnv: 환경 변수에서 불리언 값을 읽어옵니다. (true/1/yes/y, false/0/no/n)
func BoolFromEnv(key string, defaultValue bool) (bool, error) {
	return BoolFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// BoolFromEnvFirstNonEmpty: 여러 키 중 처음으로 값이 있는 불리언을 반환합니다.
func BoolFromEnvFirstNonEmpty(keys []string, defaultValue bool) (bool, error) {
	return parseFirst(keys, defaultValue, "bool", parseBool)
}

// DurationSecondsFromEnv: 초 단위 정수를 Duration으로 읽어옵니다. 음수는 에러입니다.
func DurationSecondsFromEnv(key string, defaultSeconds int64) (time.Duration, error) {
	seconds, err := Int64FromEnv(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	if seconds < 0 {
		return 0, fmt.Errorf("invalid duration seconds env %s=%d", key, seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// StringFromEnv: 환경 변수에서 문자열 값을 읽어옵니다.
func StringFromEnv(key string, defaultValue string) string {
	return StringFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringFromEnvFirstNonEmpty: 여러 키 중 처음으로 값이 있는 문자열을 반환합니다.
func StringFromEnvFirstNonEmpty(keys []string, defaultValue string) string {
	_, raw, ok := firstEnv(keys)
	if !ok {
		return defaultValue
	}
	return raw
}
