package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeNotFound, "item not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeIOFailure, "write failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeIOFailure) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("id", "REQ-001").WithDetail("attempt", 2)
	if detailed.Details["id"] != "REQ-001" {
		t.Error("WithDetail should add details")
	}
}

func TestIsThroughWrappers(t *testing.T) {
	base := NotFound("item", "REQ-009")

	if !Is(fmt.Errorf("dispatch: %w", base), ErrCodeNotFound) {
		t.Error("Is should see through fmt wrapping")
	}

	joined := stderrors.Join(IOFailure("write", "/tmp/a.yml", fmt.Errorf("disk full")), base)
	if !Is(joined, ErrCodeNotFound) || !Is(joined, ErrCodeIOFailure) {
		t.Error("Is should see every member of a joined error")
	}

	nested := ParseFailed("/p/REQ-001.yml", Invalid("level", "empty"))
	if !Is(nested, ErrCodeValidation) {
		t.Error("Is should follow the cause chain")
	}
	if GetCode(nested) != ErrCodeParse {
		t.Errorf("GetCode should report the outermost code, got %s", GetCode(nested))
	}
}

func TestErrorConstructors(t *testing.T) {
	err := NotFound("item", "REQ-001")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Details["id"] != "REQ-001" {
		t.Error("NotFound should include id detail")
	}

	err = IOFailure("write", "/tmp/x.yml", fmt.Errorf("boom"))
	if err.Details["path"] != "/tmp/x.yml" {
		t.Error("IOFailure should include path detail")
	}

	v, ok := Detail(fmt.Errorf("ctx: %w", Invalid("link", "empty")), "field")
	if !ok || v != "link" {
		t.Errorf("Detail should find field through wrapping, got %v %v", v, ok)
	}
}
