package glob

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func withTempDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	return dir
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestExpandPreservesCommandName(t *testing.T) {
	dir := withTempDir(t, "a.txt", "b.txt")
	chdir(t, dir)

	got := Expand([]string{"cat", "*.txt"})
	want := []string{"cat", "a.txt", "b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}
}

func TestExpandNoMatchKeepsLiteral(t *testing.T) {
	dir := withTempDir(t)
	chdir(t, dir)

	got := Expand([]string{"cat", "*.nope"})
	want := []string{"cat", "*.nope"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}
}

func TestExpandNoWildcardPassthrough(t *testing.T) {
	dir := withTempDir(t)
	chdir(t, dir)

	argv := []string{"echo", "hello", "world"}
	got := Expand(argv)
	if !reflect.DeepEqual(got, argv) {
		t.Fatalf("Expand = %v, want unchanged %v", got, argv)
	}
}

func TestExpandExcludesDotEntries(t *testing.T) {
	dir := withTempDir(t, "one")
	chdir(t, dir)

	got := Expand([]string{"ls", "*"})
	for _, a := range got {
		if a == "." || a == ".." {
			t.Fatalf("Expand leaked dot entry: %v", got)
		}
	}
}
