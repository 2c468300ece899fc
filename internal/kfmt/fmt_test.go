package kfmt

import (
	"bytes"
	"testing"
)

func TestPrintfVerbs(t *testing.T) {
	specs := []struct {
		format string
		args   []interface{}
		want   string
	}{
		{"hello %s", []interface{}{"world"}, "hello world"},
		{"%d ticks", []interface{}{42}, "42 ticks"},
		{"%4d", []interface{}{7}, "   7"},
		{"0x%04x", []interface{}{uint32(0xbeef)}, "0xbeef"},
		{"%o", []interface{}{uint8(8)}, "10"},
		{"%t/%t", []interface{}{true, false}, "true/false"},
		{"%%d", nil, "%d"},
	}

	for _, s := range specs {
		var buf bytes.Buffer
		if _, err := Fprintf(&buf, s.format, s.args...); err != nil {
			t.Fatalf("Fprintf(%q) error: %v", s.format, err)
		}
		if got := buf.String(); got != s.want {
			t.Errorf("Fprintf(%q) = %q, want %q", s.format, got, s.want)
		}
	}
}

func TestPrintfMissingAndExtraArgs(t *testing.T) {
	var buf bytes.Buffer
	Fprintf(&buf, "%d %d", 1)
	if got := buf.String(); got != "1 %!(MISSING)" {
		t.Errorf("missing arg: got %q", got)
	}

	buf.Reset()
	Fprintf(&buf, "%d", 1, 2)
	if got := buf.String(); got != "1%!(EXTRA)" {
		t.Errorf("extra arg: got %q", got)
	}
}

func TestSetOutputSinkFlushesRingBuffer(t *testing.T) {
	outputSink = nil
	earlyBuf = ringBuffer{}

	Printf("buffered-%d", 1)

	var buf bytes.Buffer
	SetOutputSink(&buf)
	Printf("live-%d", 2)

	if got := buf.String(); got != "buffered-1live-2" {
		t.Errorf("got %q", got)
	}
	SetOutputSink(nil)
}
