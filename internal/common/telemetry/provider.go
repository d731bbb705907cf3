// Package telemetry 는 OpenTelemetry TracerProvider 초기화와 trace context 전파 헬퍼를 둔다.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	commonconfig "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/config"
)

// Provider: 전역 TracerProvider 수명 관리
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
}

// NewProvider: OTLP gRPC exporter 로 TracerProvider 를 만들고 전역으로 등록한다.
// cfg.Enabled 가 false 면 no-op Provider.
func NewProvider(ctx context.Context, cfg commonconfig.TelemetryConfig) (*Provider, error) {
	// 비활성 상태에서도 스트림 메시지 trace 전파는 동작해야 한다
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	// resource.Default() 와 Merge 하면 Schema URL 충돌이 난다
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter failed: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(rootSampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	return &Provider{tracerProvider: tp}, nil
}

func rootSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown: 버퍼에 남은 span 을 flush 하고 provider 를 닫는다.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tracerProvider == nil {
		return nil
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider failed: %w", err)
	}
	return nil
}

// IsEnabled: 실제 exporter 가 붙어 있는지 여부
func (p *Provider) IsEnabled() bool {
	return p != nil && p.tracerProvider != nil
}
