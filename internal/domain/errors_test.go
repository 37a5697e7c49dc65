package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestOpErrorMessage(t *testing.T) {
	err := &OpError{
		Op:   "csvcurve.load",
		Kind: KindNotFound,
		Path: "data/x.csv",
		Err:  errors.New("no such file"),
	}

	msg := err.Error()
	for _, want := range []string{"csvcurve.load", "not_found", "data/x.csv", "no such file"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got %q", want, msg)
		}
	}
}

func TestOpErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("outer: %w", &OpError{Op: "op", Kind: KindBadData, Err: inner})

	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to reach the inner error")
	}
	if !IsKind(err, KindBadData) {
		t.Fatal("expected IsKind to classify through wrapping")
	}
	if IsKind(err, KindArchive) {
		t.Fatal("did not expect KindArchive")
	}
}

func TestIsKindPlainError(t *testing.T) {
	if IsKind(errors.New("plain"), KindBadData) {
		t.Fatal("plain errors have no kind")
	}
}
