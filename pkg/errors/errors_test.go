package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "load coupon")

	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
	if err.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}
	if got := err.Error(); got != "DEPENDENCY_ERROR: load coupon" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeNotFound, "product not found")
	wrapped := fmt.Errorf("handler: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("expected not found, got %s", typed.Code())
	}
}

func TestAsReturnsNilForPlainError(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad selection").WithDetails(map[string]string{"size": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["size"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}
}
