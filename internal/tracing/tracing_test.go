package tracing

import (
	"context"
	"testing"

	"github.com/iwvelando/mortgage-calculator/internal/config"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{}, "test", nil)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	_, span := Tracer().Start(context.Background(), "unit")
	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span from the SDK provider")
	}
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown returned error: %v", err)
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	conf := config.TelemetryConfig{OTLPEndpoint: "127.0.0.1:4318", ServiceName: "unit", Insecure: true}
	shutdown, err := Setup(context.Background(), conf, "test", nil)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing is listening; a cancelled context bounds the flush.
	_ = shutdown(ctx)
}
