package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownLayerType, "no layer registered for %q", "conv9d")

	want := `UNKNOWN_LAYER_TYPE: no layer registered for "conv9d"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidGraph, cause, "decode graph %s", "model.json")

	want := "GRAPH_INVALID: decode graph model.json: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeRankMismatch, "expected rank 4, got 2")

	if !Is(err, ErrCodeRankMismatch) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeConfigType) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeRankMismatch) {
		t.Error("Is should not match plain errors")
	}

	// Matching works through fmt.Errorf wrapping too.
	wrapped := fmt.Errorf("validate node %s: %w", "dense_0", err)
	if !Is(wrapped, ErrCodeRankMismatch) {
		t.Error("Is should unwrap through fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeSelfLoop, "edge a -> a")); got != ErrCodeSelfLoop {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeSelfLoop)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeIncompatibleDimension, "kernel 5 exceeds input 3")
	if got := UserMessage(err); got != "kernel 5 exceeds input 3" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := stderrors.New("something broke")
	if got := UserMessage(plain); got != "something broke" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
