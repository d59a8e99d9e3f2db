package prompt

import (
	"os"
	"strings"
	"testing"

	"ebash/internal/painter"
)

func TestUpdateIncludesUserHostAndDollar(t *testing.T) {
	p := painter.Painter{}
	got := Update(p)
	if !strings.HasSuffix(got, "$ ") {
		t.Fatalf("prompt %q does not end with '$ '", got)
	}
	if !strings.Contains(got, "@") {
		t.Fatalf("prompt %q missing user@host separator", got)
	}
}

func TestUpdateAbbreviatesHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(wd)

	if err := os.Chdir(dir); err != nil {
		t.Skipf("cannot chdir to %s: %v", dir, err)
	}

	p := painter.Painter{}
	got := Update(p)
	if !strings.Contains(got, "~") {
		t.Fatalf("prompt %q expected to abbreviate home as ~", got)
	}
}
