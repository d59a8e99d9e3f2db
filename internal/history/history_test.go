package history

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestEntriesRoundTripsThroughFromEntries(t *testing.T) {
	h := New(10, "")
	h.Add("echo one")
	h.Add("echo two")

	rebuilt := FromEntries(h.Entries(), 10)
	if rebuilt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rebuilt.Len())
	}
	if got, ok := rebuilt.Get(1); !ok || got != "echo two" {
		t.Fatalf("Get(1) = %q, %v, want %q, true", got, ok, "echo two")
	}
}

func TestFromEntriesTruncatesToCapacity(t *testing.T) {
	rebuilt := FromEntries([]string{"a", "b", "c"}, 2)
	if rebuilt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rebuilt.Len())
	}
	if got := rebuilt.Entries(); got[0] != "b" || got[1] != "c" {
		t.Fatalf("Entries() = %v, want [b c]", got)
	}
}

func TestAddSkipsEmptyAndDuplicates(t *testing.T) {
	h := New(10, "")
	h.Add("")
	h.Add("ls")
	h.Add("ls")
	h.Add("pwd")
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
}

func TestAddEvictsOldest(t *testing.T) {
	h := New(2, "")
	h.Add("one")
	h.Add("two")
	h.Add("three")
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	var buf bytes.Buffer
	h.Print(&buf)
	if strings.Contains(buf.String(), "one") {
		t.Fatalf("expected oldest entry evicted, got %q", buf.String())
	}
}

func TestBrowseCursor(t *testing.T) {
	h := New(10, "")
	h.Add("first")
	h.Add("second")
	h.Add("third")

	line, ok := h.Get(1)
	if !ok || line != "third" {
		t.Fatalf("Get(1) = %q, %v, want third, true", line, ok)
	}
	line, ok = h.Get(1)
	if !ok || line != "second" {
		t.Fatalf("Get(1) = %q, %v, want second, true", line, ok)
	}
	line, ok = h.Get(-1)
	if !ok || line != "third" {
		t.Fatalf("Get(-1) = %q, %v, want third, true", line, ok)
	}
	_, ok = h.Get(-1)
	if ok {
		t.Fatalf("Get(-1) past the end should report ok=false")
	}
}

func TestResetBrowseOnAdd(t *testing.T) {
	h := New(10, "")
	h.Add("first")
	h.Add("second")
	h.Get(1)
	h.Add("third")
	line, ok := h.Get(1)
	if !ok || line != "third" {
		t.Fatalf("after Add, Get(1) = %q, %v, want third, true (browse cursor not reset)", line, ok)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hist")

	h1 := New(10, path)
	h1.Add("alpha")
	h1.Add("beta")

	h2 := New(10, path)
	h2.Init()
	if h2.Len() != 2 {
		t.Fatalf("after Init, Len() = %d, want 2", h2.Len())
	}
	line, ok := h2.Get(1)
	if !ok || line != "beta" {
		t.Fatalf("Get(1) after reload = %q, %v, want beta, true", line, ok)
	}
}

func TestCapNeverExceeded(t *testing.T) {
	h := New(5, "")
	for i := 0; i < 100; i++ {
		h.Add(string(rune('a' + i%26)))
	}
	if h.Len() > 5 {
		t.Fatalf("Len() = %d, want <= 5", h.Len())
	}
}
