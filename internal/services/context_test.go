package services_test

import (
	"context"
	"testing"

	"vidscript/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithKind(ctx, "vtt")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if kind, ok := services.KindFromContext(ctx); !ok || kind != "vtt" {
		t.Fatalf("unexpected kind: %v %v", kind, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithKind(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.KindFromContext(ctx); ok {
		t.Fatal("expected no kind value")
	}
}
