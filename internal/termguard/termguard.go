// Package termguard scopes raw-mode acquisition of the controlling
// terminal: it puts stdin into raw mode on first use and guarantees
// restoration of the saved attributes on every return path, including
// panics, matching the original shell's enable_raw_mode/disable_raw_mode
// pair but without their file-scope globals.
package termguard

import (
	"os"

	"golang.org/x/term"
)

// Guard holds the terminal state needed to restore cooked mode. The zero
// value is ready to use; Release is a safe no-op if Acquire was never
// called or already failed.
type Guard struct {
	fd    int
	state *term.State
}

// IsTerminal reports whether fd refers to a terminal. The line editor uses
// this to decide whether to run the raw-mode loop at all or degrade to a
// plain line read.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Acquire puts fd into raw mode and remembers the previous state. It is a
// no-op if fd is not a terminal or the mode switch fails (the original
// shell silently falls back to cooked input on tcgetattr/tcsetattr
// failure); callers should not treat a failed Acquire as fatal.
func (g *Guard) Acquire(fd int) error {
	if !term.IsTerminal(fd) {
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	g.fd = fd
	g.state = state
	return nil
}

// Release restores the terminal to the state captured by Acquire. Safe to
// call multiple times and from a deferred position on every return path.
func (g *Guard) Release() {
	if g.state == nil {
		return
	}
	_ = term.Restore(g.fd, g.state)
	g.state = nil
}

// StdinFd is the file descriptor the line editor reads from.
func StdinFd() int {
	return int(os.Stdin.Fd())
}
