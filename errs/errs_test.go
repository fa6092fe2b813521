package errs

import (
	"errors"
	"testing"
)

func TestCodeErrorIs(t *testing.T) {
	err := InvalidArgument.Printf("timer %d", 7)
	if !errors.Is(err, InvalidArgument) {
		t.Fatalf("decorated error lost its code: %v", err)
	}
	if errors.Is(err, Closed) {
		t.Fatalf("code %d matched CLOSED", err.Code())
	}
	if err.Error() != "INVALID_ARGUMENT,timer 7" {
		t.Fatalf("unexpected desc: %s", err.Error())
	}
}

func TestWrapError(t *testing.T) {
	plain := errors.New("boom")
	wrapped := WrapError(plain)
	if wrapped.Code() != ErrCode_Unknown {
		t.Fatalf("wrap of plain error should be UNKNOWN, got %d", wrapped.Code())
	}
	if WrapError(Busy) != Busy {
		t.Fatalf("wrap of CodeError should return it unchanged")
	}
}
