// Package signalinit installs the shell process's own signal
// disposition: SIGINT prints a newline and is otherwise swallowed
// (the REPL's own read loop is interrupted, not the process), and
// SIGTSTP is ignored outright so Ctrl-Z never suspends the shell
// itself.
package signalinit

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Init starts a goroutine that prints a newline to out on every
// SIGINT and discards SIGTSTP. It returns a stop function that
// restores the default disposition for both signals.
func Init(out *os.File) (stop func()) {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTSTP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigCh:
				if sig == unix.SIGINT {
					out.WriteString("\n")
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
