package otel

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, Options{Endpoint: endpoint, ServiceName: "lighthouse-test"})
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatal("all providers should be set")
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("shutdown without exporters returned %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"://invalid", "http://[invalid", "http://"} {
		t.Run(endpoint, func(t *testing.T) {
			if _, err := NewProviders(context.Background(), Options{Endpoint: endpoint, ServiceName: "lighthouse-test"}); err == nil {
				t.Errorf("NewProviders(%q) should return error", endpoint)
			}
		})
	}
}

func TestCollectorTarget(t *testing.T) {
	tests := []struct {
		endpoint     string
		override     bool
		wantTarget   string
		wantInsecure bool
	}{
		{"localhost:4317", false, "localhost:4317", true},
		{"http://collector:4317/v1/traces", false, "collector:4317", true},
		{"https://otel.lighthouse.example:4317", false, "otel.lighthouse.example:4317", false},
		{"https://otel.lighthouse.example:4317", true, "otel.lighthouse.example:4317", true},
	}
	for _, tt := range tests {
		target, insecure, err := collectorTarget(tt.endpoint, tt.override)
		if err != nil {
			t.Fatalf("collectorTarget(%q): %v", tt.endpoint, err)
		}
		if target != tt.wantTarget || insecure != tt.wantInsecure {
			t.Errorf("collectorTarget(%q, %v) = %q, %v; want %q, %v",
				tt.endpoint, tt.override, target, insecure, tt.wantTarget, tt.wantInsecure)
		}
	}
}

func TestServiceResource_Environment(t *testing.T) {
	res, err := serviceResource(Options{ServiceName: "lighthouse-restaurant", Environment: "production"})
	if err != nil {
		t.Fatalf("serviceResource: %v", err)
	}
	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["service.name"] != "lighthouse-restaurant" {
		t.Errorf("service.name = %q", found["service.name"])
	}
	if found["deployment.environment.name"] != "production" {
		t.Errorf("deployment.environment.name = %q", found["deployment.environment.name"])
	}
}

func TestShutdownChain_ReverseOrderJoinsErrors(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	chain := shutdownChain{
		func(context.Context) error { order = append(order, 1); return nil },
		func(context.Context) error { order = append(order, 2); return boom },
	}
	if err := chain.run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("run = %v, want boom", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("order = %v, want [2 1]", order)
	}
}

func TestSetGlobal(t *testing.T) {
	providers, err := NewProviders(context.Background(), Options{ServiceName: "lighthouse-test"})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	providers.SetGlobal()
	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("global TracerProvider should be ours")
	}
}
