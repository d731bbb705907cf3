package docstore

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

func decoderConfig(result any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTimeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
}

// 저장 시각은 RFC3339(나노초 포함) 문자열이다. 빈 문자열은 zero time.
func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s, _ := data.(string)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// Decode: 문서 본문을 json 태그 기준으로 result 에 디코딩한다.
func Decode(data Data, result any) error {
	decoder, err := mapstructure.NewDecoder(decoderConfig(result))
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(data)); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// DecodeAs: Decode 의 제네릭 버전
func DecodeAs[T any](snap Snapshot) (T, error) {
	var out T
	if err := Decode(snap.Data, &out); err != nil {
		return out, err
	}
	return out, nil
}
