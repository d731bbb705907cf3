// Package di 는 Wire 그래프에서 같은 타입의 의존성을 구분하기 위한 래퍼 타입을 둔다.
package di

import "github.com/valkey-io/valkey-go"

// DataValkeyClient 는 캐시, 가입 락, 이벤트 스트림이 공유하는 Valkey 클라이언트다.
// Valkey 가 꺼져 있으면 Client 는 nil 이다.
type DataValkeyClient struct{ valkey.Client }

// Enabled: 클라이언트가 설정되어 있는지 여부
func (c DataValkeyClient) Enabled() bool { return c.Client != nil }
