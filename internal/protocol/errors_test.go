package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorDetail_Error(t *testing.T) {
	err := NewErrorDetail(920, "delete of a not existing key is not possible")
	want := "[920] delete of a not existing key is not possible"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorDetail_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same code", NewErrorDetail(900, "other text"), ErrSetExisting, true},
		{"different code", NewErrorDetail(910, ""), ErrSetExisting, false},
		{"wrapped", fmt.Errorf("op: %w", NewErrorDetail(-2, "")), ErrKeyMismatch, true},
		{"plain error", errors.New("x"), ErrSetExisting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	if code, ok := Code(fmt.Errorf("x: %w", ErrReservedKey)); !ok || code != CodeReservedKey {
		t.Errorf("Code() = %d, %v, want %d, true", code, ok, CodeReservedKey)
	}
	if _, ok := Code(errors.New("x")); ok {
		t.Error("Code(plain) ok = true, want false")
	}
}
