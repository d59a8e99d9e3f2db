package execengine

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"ebash/internal/parser"
)

// applyRedirections opens each redirection target in order and dup2's it
// onto the conventional stdin/stdout descriptor, so a later redirection
// of the same stream silently overrides an earlier one within the same
// stage. Meant to run inside the stage child, which owns its own fd
// table after fork+exec.
func applyRedirections(redirs []parser.Redirection) error {
	for _, r := range redirs {
		var fd int
		var err error
		var target int

		switch r.Kind {
		case parser.RedirIn:
			fd, err = unix.Open(r.File, unix.O_RDONLY, 0)
			target = unix.Stdin
		case parser.RedirOut:
			fd, err = unix.Open(r.File, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o666)
			target = unix.Stdout
		case parser.RedirAppend:
			fd, err = unix.Open(r.File, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND, 0o666)
			target = unix.Stdout
		}
		if err != nil {
			return fmt.Errorf("%s: %w", r.File, err)
		}
		if err := unix.Dup2(fd, target); err != nil {
			unix.Close(fd)
			return fmt.Errorf("dup2: %w", err)
		}
		unix.Close(fd)
	}
	return nil
}

// openRedirectionsForBuiltin resolves a stage's redirections to plain
// *os.File handles for the no-fork single-builtin fast path, where the
// shell process itself never touches its real fd 0/1/2 — the builtin
// just writes to whatever io.Writer/reads from whatever io.Reader the
// last applicable redirection names.
func openRedirectionsForBuiltin(redirs []parser.Redirection) (in *os.File, out *os.File, cleanup func(), err error) {
	var opened []*os.File
	cleanup = func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, r := range redirs {
		switch r.Kind {
		case parser.RedirIn:
			f, e := os.Open(r.File)
			if e != nil {
				cleanup()
				return nil, nil, func() {}, e
			}
			opened = append(opened, f)
			in = f
		case parser.RedirOut:
			f, e := os.OpenFile(r.File, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
			if e != nil {
				cleanup()
				return nil, nil, func() {}, e
			}
			opened = append(opened, f)
			out = f
		case parser.RedirAppend:
			f, e := os.OpenFile(r.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
			if e != nil {
				cleanup()
				return nil, nil, func() {}, e
			}
			opened = append(opened, f)
			out = f
		}
	}
	return in, out, cleanup, nil
}
