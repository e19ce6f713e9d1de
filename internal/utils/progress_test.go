package utils

import (
	"bytes"
	"testing"
)

func TestTerminalProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewTerminalProgress(&buf)

	p.Update(8192, "example.test/_root_")
	p.Update(16384, "example.test/_root_")
	p.Update(100, "example.test/about")
	p.Finish()

	if p.message != "example.test/about" {
		t.Errorf("message = %q", p.message)
	}
}

func TestNopProgress(t *testing.T) {
	var sink ProgressSink = NopProgress{}
	sink.Update(1, "x")
	sink.Finish()
}
