package domainerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := InsufficientFunds("not enough money")
	if !IsKind(err, KindInsufficientFunds) {
		t.Fatal("expected KindInsufficientFunds")
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("did not expect KindNotFound")
	}
}

func TestKindOfNonDomainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf() = %q, want %q", got, KindInternal)
	}
}

func TestKindOfNil(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Fatalf("KindOf(nil) = %q, want empty", got)
	}
}

func TestErrorsIsMatchesOnKindAlone(t *testing.T) {
	wrapped := Wrap(KindConflict, "row changed", errors.New("stale version"))
	if !errors.Is(wrapped, Conflict("")) {
		t.Fatal("expected errors.Is to match same Kind regardless of message")
	}
	if errors.Is(wrapped, NotFound("")) {
		t.Fatal("did not expect errors.Is to match a different Kind")
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("driver error")
	wrapped := Internal("failed to write", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatal("expected errors.Is to traverse to the wrapped cause")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("driver error")
	wrapped := Internal("failed to write", cause)
	want := fmt.Sprintf("%s: %s: %v", KindInternal, "failed to write", cause)
	if wrapped.Error() != want {
		t.Fatalf("Error() = %q, want %q", wrapped.Error(), want)
	}
}
