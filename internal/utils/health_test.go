package utils

import (
	"context"
	"errors"
	"testing"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheckerDegradedWhenBlobDown(t *testing.T) {
	h := &HealthChecker{Blob: pingerFunc(func(ctx context.Context) error {
		return errors.New("bucket missing")
	})}
	status := h.Check(context.Background())
	if status.Status != "degraded" {
		t.Fatalf("expected degraded, got %s", status.Status)
	}
	if len(status.Services) != 1 || status.Services[0].Name != "MinIO" || status.Services[0].Message != "bucket missing" {
		t.Fatalf("unexpected services: %#v", status.Services)
	}
}

func TestHealthCheckerHealthyWithNoDependencies(t *testing.T) {
	h := &HealthChecker{}
	if status := h.Check(context.Background()); status.Status != "healthy" || len(status.Services) != 0 {
		t.Fatalf("unexpected status: %#v", status)
	}
}
