// Package prompt builds the interactive shell's prompt string,
// user@host:cwd$, rendered through a painter.Painter for coloring.
package prompt

import (
	"os"
	"os/user"
	"strings"

	"ebash/internal/painter"
)

// DefaultPrompt is used when the working directory cannot be
// determined.
const DefaultPrompt = "$ "

// Update returns the prompt string for the current process: the login
// name, hostname, and working directory (abbreviated with ~ for
// $HOME), styled by p and followed by "$ ".
func Update(p painter.Painter) string {
	userName := "user"
	if u, err := user.Current(); err == nil {
		userName = u.Username
	}

	host, err := os.Hostname()
	if err != nil {
		host = "host"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return DefaultPrompt
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(cwd, home) {
		cwd = "~" + strings.TrimPrefix(cwd, home)
	}

	path := p.Paint(p.PathBold, p.PathColour, cwd)
	return userName + "@" + host + ":" + path + "$ "
}
