// Package docstore 는 컬렉션/ID 로 주소가 매겨지는 JSON 문서 저장소 계약을 정의한다.
// 점 조회, 병합 upsert, 서버 생성 ID 추가, 서버 시각 센티널을 지원한다.
package docstore

import (
	"context"
	"errors"
	"maps"
	"time"

	json "github.com/goccy/go-json"
)

// ErrNotFound: 문서가 없음
var ErrNotFound = errors.New("document not found")

// Data: 문서 본문. 값은 JSON 으로 직렬화 가능해야 한다.
type Data map[string]any

// Snapshot: 조회한 문서
type Snapshot struct {
	ID        string
	Data      Data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref: Add 로 생성된 문서 위치
type Ref struct {
	Collection string
	ID         string
}

// SetOptions: Set 동작 옵션. Merge 면 data 에 있는 최상위 필드만 바꾸고 나머지는 유지한다.
type SetOptions struct {
	Merge bool
}

// Query: List 조건. CreatedAfter 가 zero 면 전체, Limit 이 0 이하면 제한 없음.
// OrderByDesc 가 있으면 그 숫자 필드 내림차순으로 정렬하고 같은 값은 생성 시각 순이다.
// 필드가 없거나 숫자가 아닌 문서는 뒤로 간다.
type Query struct {
	CreatedAfter time.Time
	OrderByDesc  string
	Limit        int
}

// FieldValue 는 쓰기 시점에 저장소가 채우는 특수 값이다.
type FieldValue struct {
	kind string
}

// ServerTimestamp: 쓰기 시점의 저장소 시각(UTC)으로 치환되는 센티널
var ServerTimestamp = &FieldValue{kind: "serverTimestamp"}

// MarshalJSON: 치환되지 않은 센티널이 저장되지 않도록 막는다.
func (v *FieldValue) MarshalJSON() ([]byte, error) {
	return nil, errors.New("unresolved field value: " + v.kind)
}

// Getter 는 문서 점 조회다.
type Getter interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
}

// Setter 는 지정 ID 문서 upsert 다.
type Setter interface {
	Set(ctx context.Context, collection, id string, data Data, opts SetOptions) error
}

// Adder 는 서버 생성 ID 로 새 문서를 만든다.
type Adder interface {
	Add(ctx context.Context, collection string, data Data) (Ref, error)
}

// Lister 는 생성 시각 오름차순 목록 조회다.
type Lister interface {
	List(ctx context.Context, collection string, q Query) ([]Snapshot, error)
}

// Deleter 는 지정 ID 문서 삭제다. 없는 문서는 에러가 아니다.
type Deleter interface {
	Delete(ctx context.Context, collection, id string) error
}

// Store 는 전체 문서 저장소 계약이다.
type Store interface {
	Getter
	Setter
	Adder
	Lister
	Deleter
}

// NumberField: data[field] 가 숫자면 float64 로 돌려준다.
func NumberField(data Data, field string) (float64, bool) {
	switch v := data[field].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// ResolveServerTimestamps: data 의 ServerTimestamp 를 now(UTC) 로 바꾼 사본을 돌려준다.
// 중첩 맵과 슬라이스 안의 센티널도 바꾼다. data 는 수정하지 않는다.
func ResolveServerTimestamps(data Data, now time.Time) Data {
	out := make(Data, len(data))
	for k, v := range data {
		out[k] = resolveValue(v, now.UTC())
	}
	return out
}

func resolveValue(v any, now time.Time) any {
	switch tv := v.(type) {
	case *FieldValue:
		if tv == ServerTimestamp {
			return now
		}
		return tv
	case Data:
		return map[string]any(ResolveServerTimestamps(tv, now))
	case map[string]any:
		return map[string]any(ResolveServerTimestamps(tv, now))
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = resolveValue(item, now)
		}
		return out
	default:
		return v
	}
}

// MergeData: existing 위에 update 의 최상위 필드를 덮어쓴 새 맵
func MergeData(existing, update Data) Data {
	out := make(Data, len(existing)+len(update))
	maps.Copy(out, existing)
	maps.Copy(out, update)
	return out
}

// Normalize: JSON 왕복으로 data 를 저장 표현(map/[]any/float64/string/bool)으로 바꾼다.
func Normalize(data Data) (Data, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out Data
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Data{}
	}
	return out, nil
}

// Prepare: 센티널 치환 후 정규화한다. 저장소 구현이 쓰기 직전에 호출한다.
func Prepare(data Data, now time.Time) (Data, error) {
	return Normalize(ResolveServerTimestamps(data, now))
}
