package lineeditor

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"ebash/internal/history"
)

func pipePair(t *testing.T) (r, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})
	return r, w
}

func TestReadLinePlainModeOnPipe(t *testing.T) {
	r, w := pipePair(t)

	go func() {
		_, _ = w.Write([]byte("echo hi\n"))
		_ = w.Close()
	}()

	var out bytes.Buffer
	ed := &Editor{In: r, Out: &out, History: history.New(10, "")}

	line, err := ed.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "echo hi" {
		t.Fatalf("line = %q, want %q", line, "echo hi")
	}
}

func TestReadLinePlainModeEOFWithNoTrailingNewline(t *testing.T) {
	r, w := pipePair(t)

	go func() {
		_, _ = w.Write([]byte("no newline at all"))
		_ = w.Close()
	}()

	var out bytes.Buffer
	ed := &Editor{In: r, Out: &out, History: history.New(10, "")}

	line, err := ed.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "no newline at all" {
		t.Fatalf("line = %q", line)
	}
}

func TestReadLinePlainModeImmediateEOF(t *testing.T) {
	r, w := pipePair(t)
	_ = w.Close()

	var out bytes.Buffer
	ed := &Editor{In: r, Out: &out, History: history.New(10, "")}

	_, err := ed.ReadLine()
	if !errors.Is(err, ErrEndOfInput) {
		t.Fatalf("err = %v, want ErrEndOfInput", err)
	}
}

func TestReadLineMultipleLinesOnSamePipe(t *testing.T) {
	r, w := pipePair(t)

	go func() {
		_, _ = w.Write([]byte("first\nsecond\n"))
		_ = w.Close()
	}()

	var out bytes.Buffer
	ed := &Editor{In: r, Out: &out, History: history.New(10, "")}

	first, err := ed.ReadLine()
	if err != nil || first != "first" {
		t.Fatalf("first = %q, err = %v", first, err)
	}
	second, err := ed.ReadLine()
	if err != nil || second != "second" {
		t.Fatalf("second = %q, err = %v", second, err)
	}
}
