package services_test

import (
	"errors"
	"strings"
	"testing"

	"tonearm/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "apply", "write tags", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"apply", "write tags", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "lookup", "query", "timed out", nil)
	if !services.IsTransient(err) {
		t.Fatalf("expected nil marker to default to transient, got %v", err)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   string
	}{
		{"nil", nil, ""},
		{"validation", services.Wrap(services.ErrValidation, "group", "", "bad", nil), "validation"},
		{"transient", services.Wrap(services.ErrTransient, "lookup", "", "net", nil), "transient"},
		{"plain", errors.New("misc"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Category(tt.err); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}
