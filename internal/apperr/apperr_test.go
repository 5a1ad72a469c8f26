package apperr

import (
	"errors"
	"testing"
)

func TestWrapAndIs(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		check func(error) bool
	}{
		{"not found", NotFound, IsNotFound},
		{"conflict", Conflict, IsConflict},
		{"invalid", Invalid, IsInvalid},
		{"integrity", Integrity, IsIntegrity},
		{"backend", Backend, IsBackend},
		{"unavailable", Unavailable, IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := errors.New("underlying failure")
			err := Wrap(tt.kind, "something went wrong", cause)
			if !tt.check(err) {
				t.Errorf("expected %v to be kind %s", err, tt.kind)
			}
			if !errors.Is(err, cause) && !errors.As(err, new(*Error)) {
				t.Errorf("expected wrapped error to unwrap to cause")
			}
			if !errors.Is(errors.Unwrap(err), cause) {
				t.Errorf("Unwrap(err) = %v, want %v", errors.Unwrap(err), cause)
			}
		})
	}
}

func TestWrapNilCause(t *testing.T) {
	if err := Wrap(Backend, "no cause", nil); err != nil {
		t.Errorf("Wrap with nil cause = %v, want nil", err)
	}
}

func TestNewHasNoCause(t *testing.T) {
	err := New(Invalid, "bad input")
	if !IsInvalid(err) {
		t.Errorf("expected New error to be kind Invalid")
	}
	if errors.Unwrap(err) != nil {
		t.Errorf("New error should not wrap a cause")
	}
}

func TestKindMismatch(t *testing.T) {
	err := New(NotFound, "missing")
	if IsConflict(err) {
		t.Errorf("NotFound error should not report as Conflict")
	}
}

func TestIsOnPlainError(t *testing.T) {
	plain := errors.New("plain error")
	for _, check := range []func(error) bool{IsNotFound, IsConflict, IsInvalid, IsIntegrity, IsBackend, IsUnavailable} {
		if check(plain) {
			t.Errorf("plain error should not match any taxonomy kind")
		}
	}
}
