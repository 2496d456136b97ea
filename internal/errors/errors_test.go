package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestRecallError_Error(t *testing.T) {
	err := New(CodeConfigInvalid, "unsupported store driver: bolt")
	expected := "[CONFIG_INVALID] unsupported store driver: bolt"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestRecallError_Wrap(t *testing.T) {
	inner := fmt.Errorf("database is locked")
	err := Wrap(CodeStore, "failed to add memory", inner)

	if err.Error() != "[STORE_ERROR] failed to add memory: database is locked" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the inner error")
	}
}

func TestRecallError_WithSuggestion(t *testing.T) {
	err := New(CodeConfigInvalid, "store.path is required for the sqlite driver").
		WithSuggestion("set store.path in recall.yaml")

	if err.Suggestion != "set store.path in recall.yaml" {
		t.Errorf("unexpected suggestion: %s", err.Suggestion)
	}
	if Suggestion(err) != "set store.path in recall.yaml" {
		t.Errorf("unexpected extracted suggestion: %s", Suggestion(err))
	}
}

func TestRecallError_ErrorsAs(t *testing.T) {
	err := Wrap(CodeUnavailable, "memory service is not available", fmt.Errorf("draining"))

	var re *RecallError
	if !errors.As(err, &re) {
		t.Fatal("errors.As should match *RecallError")
	}
	if re.Code != CodeUnavailable {
		t.Errorf("expected code %q, got %q", CodeUnavailable, re.Code)
	}
}

func TestAsCode(t *testing.T) {
	err := New(CodeNotFound, "memory not found: abc")
	if AsCode(err) != CodeNotFound {
		t.Errorf("expected code %q, got %q", CodeNotFound, AsCode(err))
	}

	plain := fmt.Errorf("plain error")
	if AsCode(plain) != "" {
		t.Errorf("expected empty code for a plain error, got %q", AsCode(plain))
	}
}

func TestCodePredicates(t *testing.T) {
	if !IsValidation(New(CodeValidation, "owner_id required")) {
		t.Error("IsValidation should match")
	}
	if !IsNotFound(fmt.Errorf("wrapped: %w", New(CodeNotFound, "gone"))) {
		t.Error("IsNotFound should match through wrapping")
	}
	if IsUnavailable(New(CodeValidation, "nope")) {
		t.Error("IsUnavailable should not match a validation error")
	}
}
