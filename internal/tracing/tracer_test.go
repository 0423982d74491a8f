package tracing

import (
	"context"
	"testing"
)

func TestInitProviderWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), "", "ride-payment-relay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitProviderWithEndpoint(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), "http://127.0.0.1:4318", "ride-payment-relay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// nothing was exported, so shutdown only flushes an empty batch
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
