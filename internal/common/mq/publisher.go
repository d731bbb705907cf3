// Package mq 는 Valkey Stream 발행기를 둔다.
package mq

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/valkeyx"
)

// StreamPublisherConfig: 대상 스트림 키와 근사 최대 길이
type StreamPublisherConfig struct {
	Stream string
	MaxLen int64
}

// StreamPublisher 는 필드 맵을 XADD 로 스트림에 추가한다.
// 발행 시 ctx 의 trace context 를 메시지 필드에 함께 싣는다.
type StreamPublisher struct {
	client valkey.Client
	logger *slog.Logger
	cfg    StreamPublisherConfig
}

// NewStreamPublisher: StreamPublisher 를 만든다.
func NewStreamPublisher(client valkey.Client, logger *slog.Logger, cfg StreamPublisherConfig) *StreamPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamPublisher{client: client, logger: logger, cfg: cfg}
}

// Publish: values 를 XADD 하고 생성된 메시지 ID 를 돌려준다. MaxLen > 0 이면 MAXLEN ~ 로 자른다.
func (p *StreamPublisher) Publish(ctx context.Context, values map[string]string) (string, error) {
	if len(values) == 0 {
		return "", errors.New("no values to publish")
	}

	fields := make(telemetry.MapCarrier, len(values)+2)
	for k, v := range values {
		fields[k] = v
	}
	telemetry.InjectContext(ctx, fields)

	keys := fields.Keys()
	slices.Sort(keys)

	args := make([]string, 0, len(keys)*2+4)
	if p.cfg.MaxLen > 0 {
		args = append(args, "MAXLEN", "~", strconv.FormatInt(p.cfg.MaxLen, 10))
	}
	args = append(args, "*")
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	cmd := p.client.B().Arbitrary("XADD").Keys(p.cfg.Stream).Args(args...).Build()
	id, err := p.client.Do(ctx, cmd).ToString()
	if err != nil {
		return "", valkeyx.WrapRedisError("xadd "+p.cfg.Stream, err)
	}

	p.logger.DebugContext(ctx, "stream_message_published", "stream", p.cfg.Stream, "id", id)
	return id, nil
}
