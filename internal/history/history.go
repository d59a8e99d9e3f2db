// Package history implements the bounded, persisted command-line history
// used by the line editor: an append-only ring capped at a configured size,
// with a browse cursor that arrow-key navigation moves through.
package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultCap is the maximum number of entries kept when no configuration
// overrides it, matching the original shell's HISTORY_MAX.
const DefaultCap = 1000

// DefaultFile is the history file name created under $HOME.
const DefaultFile = ".minishell_history"

// History is a bounded ordered list of past command lines plus a browse
// cursor. The zero value is not usable; construct with New.
type History struct {
	cap     int
	path    string
	entries []string
	// browse is the current browse cursor. A value of -1 means "unset": the
	// user is not navigating history. While browsing, browse indexes
	// entries; Get(1) (older) decrements it from len(entries), Get(-1)
	// (newer) increments it back toward len(entries).
	browse int
}

// New creates a History capped at n entries, persisted to path (empty path
// disables persistence). n<=0 falls back to DefaultCap.
func New(n int, path string) *History {
	if n <= 0 {
		n = DefaultCap
	}
	return &History{cap: n, path: path, browse: -1}
}

// FromEntries builds a History pre-populated with entries (oldest first),
// capped at n (<=0 falls back to DefaultCap), with persistence disabled.
// Used to hand a re-exec'd stage child a copy of the shell's history,
// since it cannot inherit it directly.
func FromEntries(entries []string, n int) *History {
	h := New(n, "")
	if len(entries) > h.cap {
		entries = entries[len(entries)-h.cap:]
	}
	h.entries = append(h.entries, entries...)
	return h
}

// Entries returns a copy of the stored entries, oldest first, suitable
// for handing to FromEntries.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Cap reports the configured entry capacity.
func (h *History) Cap() int { return h.cap }

// NewDefault builds a History using $HOME/.minishell_history when $HOME is
// set, matching the original shell's default, and DefaultCap entries.
func NewDefault() *History {
	path := ""
	if home := os.Getenv("HOME"); home != "" {
		path = filepath.Join(home, DefaultFile)
	}
	return New(DefaultCap, path)
}

// Init loads the history file, skipping empty lines, up to the configured
// cap. Any I/O error is treated as "no prior history" (the original shell
// also silently continues when the file is absent).
func (h *History) Init() {
	if h.path == "" {
		return
	}
	f, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for len(h.entries) < h.cap && sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		h.entries = append(h.entries, line)
	}
}

// Add appends a line to history. It is a no-op for an empty line or a
// duplicate of the most recently added line. On overflow the oldest entry
// is evicted. On success the line is also appended to the history file
// when persistence is enabled. The browse cursor is always reset to unset.
func (h *History) Add(line string) {
	defer h.ResetBrowse()

	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}

	if len(h.entries) >= h.cap {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, line)

	if h.path == "" {
		return
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}

// Get returns the entry at the next older (direction>0) or newer
// (direction<0) position relative to the browse cursor. "unset" is treated
// as one past the end of the list. ok is false when there is no more
// history in the requested direction; in the newer direction running off
// the end also resets the cursor to unset.
func (h *History) Get(direction int) (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}

	if h.browse < 0 {
		h.browse = len(h.entries)
	}

	if direction > 0 {
		if h.browse > 0 {
			h.browse--
		} else {
			return "", false
		}
	} else {
		if h.browse < len(h.entries)-1 {
			h.browse++
		} else {
			h.browse = -1
			return "", false
		}
	}

	return h.entries[h.browse], true
}

// ResetBrowse returns the browse cursor to unset.
func (h *History) ResetBrowse() {
	h.browse = -1
}

// Print writes one entry per line, 1-based index first, matching history_print.
func (h *History) Print(w io.Writer) {
	for i, e := range h.entries {
		fmt.Fprintf(w, "%5d  %s\n", i+1, e)
	}
}

// Len reports the number of stored entries.
func (h *History) Len() int { return len(h.entries) }
