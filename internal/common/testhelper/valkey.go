package testhelper

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

// NewMiniValkey: miniredis 와 그에 붙은 단일 연결 valkey 클라이언트를 만든다.
// 둘 다 테스트 종료 시 정리된다.
func NewMiniValkey(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("valkey client create failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client, mr
}
