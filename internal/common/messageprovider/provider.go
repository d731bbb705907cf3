// Package messageprovider 는 YAML 메시지 카탈로그에서 점(.) 경로 키로 문구를 꺼내고
// {name} 자리표시자를 치환한다.
package messageprovider

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider: 평탄화된 메시지 카탈로그. 읽기 전용이라 동시 사용이 안전하다.
type Provider struct {
	messages map[string]string
}

// NewFromYAML: YAML 문서 전체를 카탈로그로 읽는다. 최상위는 맵이어야 한다.
func NewFromYAML(yamlContent string) (*Provider, error) {
	return NewFromYAMLAtPath(yamlContent, "")
}

// NewFromYAMLAtPath: rootKey(점 경로) 아래 맵만 카탈로그로 읽는다.
func NewFromYAMLAtPath(yamlContent string, rootKey string) (*Provider, error) {
	var raw any
	if err := yaml.Unmarshal([]byte(yamlContent), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml failed: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	rootKey = strings.TrimSpace(rootKey)
	if rootKey != "" {
		for _, part := range strings.Split(rootKey, ".") {
			m, ok := asStringMap(raw)
			if !ok {
				return nil, fmt.Errorf("yaml root key not found: %q", rootKey)
			}
			next, ok := m[part]
			if !ok {
				return nil, fmt.Errorf("yaml root key not found: %q", rootKey)
			}
			raw = next
		}
	}

	root, ok := asStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("yaml root must be an object: %q (got %T)", rootKey, raw)
	}

	messages := make(map[string]string)
	flatten("", root, messages)
	return &Provider{messages: messages}, nil
}

// Get: key 의 문구를 돌려준다. 없으면 key 자체를 돌려준다.
func (p *Provider) Get(key string, params ...Param) string {
	if p == nil {
		return key
	}
	template, ok := p.messages[key]
	if !ok {
		return key
	}
	if len(params) == 0 {
		return template
	}

	pairs := make([]string, 0, len(params)*2)
	for _, param := range params {
		pairs = append(pairs, "{"+param.Key+"}", fmt.Sprint(param.Value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Has: key 가 카탈로그에 있는지 여부
func (p *Provider) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.messages[key]
	return ok
}

// Param: 자리표시자 치환 값
type Param struct {
	Key   string
	Value any
}

// P: Param 생성 헬퍼
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := asStringMap(v); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}

func asStringMap(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, vv := range typed {
			out[fmt.Sprint(k)] = vv
		}
		return out, true
	default:
		return nil, false
	}
}
