package kpanic

import (
	"bytes"
	"errors"
	"testing"

	"cdxos/internal/kfmt"
)

func TestPanic(t *testing.T) {
	defer SetHaltFn(func() { select {} })

	var haltCalled bool
	SetHaltFn(func() { haltCalled = true })

	t.Run("with *Error", func(t *testing.T) {
		haltCalled = false
		var buf bytes.Buffer
		kfmt.SetOutputSink(&buf)

		Panic(&Error{Module: "test", Message: "panic test"})

		want := "\n-----------------------------------\n[test] unrecoverable error: panic test\n*** kernel panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
		if !haltCalled {
			t.Fatal("expected halt to be called")
		}
	})

	t.Run("with plain error", func(t *testing.T) {
		haltCalled = false
		var buf bytes.Buffer
		kfmt.SetOutputSink(&buf)

		Panic(errors.New("go error"))

		want := "\n-----------------------------------\n[rt] unrecoverable error: go error\n*** kernel panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
		if !haltCalled {
			t.Fatal("expected halt to be called")
		}
	})

	t.Run("with string", func(t *testing.T) {
		haltCalled = false
		var buf bytes.Buffer
		kfmt.SetOutputSink(&buf)

		Panic("string error")

		want := "\n-----------------------------------\n[rt] unrecoverable error: string error\n*** kernel panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
		if !haltCalled {
			t.Fatal("expected halt to be called")
		}
	})
}
