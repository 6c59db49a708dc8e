package errors

import (
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeInvalidPath, "path not found")
	if err.Code != ErrCodeInvalidPath {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidPath, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeStreamCreate, "stream creation failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeStreamCreate) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeInvalidPath) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("path", "/tmp/x").WithDetail("flags", 0x40)
	if detailed.Details["path"] != "/tmp/x" {
		t.Error("WithDetail should add details")
	}

	// Test GetCode
	if GetCode(wrapped) != ErrCodeStreamCreate {
		t.Errorf("GetCode returned %s", GetCode(wrapped))
	}
	if GetCode(nil) != "" {
		t.Error("GetCode of nil should be empty")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := InvalidPath("/no/such/dir", fmt.Errorf("stat: no such file"))
	if err.Code != ErrCodeInvalidPath {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidPath, err.Code)
	}
	if err.Details["path"] != "/no/such/dir" {
		t.Error("InvalidPath should include path detail")
	}

	err = FlagCombination("UseExtendedData requires UseCFTypes")
	if err.Code != ErrCodeFlagCombination {
		t.Errorf("expected code %s, got %s", ErrCodeFlagCombination, err.Code)
	}

	err = WatchUnsupported("plan9")
	if err.Details["goos"] != "plan9" {
		t.Error("WatchUnsupported should include goos detail")
	}
}
