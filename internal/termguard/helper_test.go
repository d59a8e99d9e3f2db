package termguard

import (
	"os"
	"testing"
)

func pipeFDs(t *testing.T) (r, w *os.File, err error) {
	t.Helper()
	return os.Pipe()
}
