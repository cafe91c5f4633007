package services_test

import (
	"errors"
	"strings"
	"testing"

	"brickmatch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "amazon", "search", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"amazon", "search", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerToTransient(t *testing.T) {
	err := services.Wrap(nil, "amazon", "search", "", nil)
	if !services.IsTransient(err) {
		t.Fatalf("expected nil marker to default to transient, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	if services.IsTransient(services.Wrap(services.ErrValidation, "catalog", "barcode", "malformed", nil)) {
		t.Fatal("validation errors are not transient")
	}
	if !services.IsTransient(services.Wrap(services.ErrTransient, "amazon", "search", "429", nil)) {
		t.Fatal("expected transient classification")
	}
}
