// Package completion implements the shell's tab-completion engine: given a
// line and a cursor offset, it classifies the current word as a command or
// filename context, collects matching candidates, and exposes the
// idle/cycling session behavior the line editor drives on repeated Tab
// presses.
package completion

import (
	"os"
	"sort"
	"strings"
)

// separators are the bytes that bound a word being completed.
const separators = " \t|;&<>"

// builtinDescriptions mirrors the original shell's own static completion
// table (deliberately independent of internal/builtin's dispatch table, the
// same way the original's completion.c keeps its own copy rather than
// querying builtins.c): a short blurb shown next to each builtin name when
// the candidate list is printed.
var builtinDescriptions = map[string]string{
	"cd":      "Change directory",
	"pwd":     "Print working directory",
	"exit":    "Exit shell",
	"export":  "Set environment variable",
	"unset":   "Unset environment variable",
	"jobs":    "List background jobs",
	"echo":    "Print text",
	"grep":    "Search for pattern",
	"ls":      "List directory contents",
	"alias":   "Create/display aliases",
	"unalias": "Remove alias",
	"history": "Show command history",
	"touch":   "Create/update file timestamps",
	"mkdir":   "Create directory",
	"rm":      "Remove files/directories",
	"cat":     "Display file contents",
	"ps":      "List running processes",
	"kill":    "Terminate a process",
}

var builtinNames = func() []string {
	names := make([]string, 0, len(builtinDescriptions))
	for n := range builtinDescriptions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}()

// Describe returns the one-line description shown for a builtin candidate
// in the completion list, or "" if name is not a known builtin.
func Describe(name string) string {
	return builtinDescriptions[name]
}

// WordBounds returns the start offset of the word being completed (the
// word is line[start:cursor]), found by walking backward from cursor to a
// separator or the start of the line.
func WordBounds(line string, cursor int) (start int) {
	start = cursor
	for start > 0 && !strings.ContainsRune(separators, rune(line[start-1])) {
		start--
	}
	return start
}

// IsFilenameContext classifies the word at cursor. It is a filename context
// when the word contains `/`, when it immediately follows `<` or `>`, or
// when it begins after the line's first whitespace-delimited word (i.e. it
// is not the command itself). Otherwise it is a command context.
func IsFilenameContext(line string, cursor int) bool {
	start := WordBounds(line, cursor)

	if strings.ContainsRune(line[start:cursor], '/') {
		return true
	}
	if start > 0 && (line[start-1] == '<' || line[start-1] == '>') {
		return true
	}

	firstWordEnd := 0
	for firstWordEnd < cursor && line[firstWordEnd] != ' ' && line[firstWordEnd] != '\t' {
		firstWordEnd++
	}
	return start > firstWordEnd
}

// candidates returns the sorted, deduplicated candidate list for the
// current word, given its classified context.
func candidates(line string, cursor int, pathEnv, pathDefault string) []string {
	start := WordBounds(line, cursor)
	prefix := line[start:cursor]

	var list []string
	if IsFilenameContext(line, cursor) {
		list = filenameCandidates(prefix)
	} else {
		list = append(list, builtinCandidates(prefix)...)
		list = append(list, pathCandidates(prefix, pathEnv, pathDefault)...)
	}

	list = dedupe(list)
	sort.Strings(list)
	return list
}

func builtinCandidates(prefix string) []string {
	var out []string
	for _, name := range builtinNames {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

func pathCandidates(prefix, pathEnv, pathDefault string) []string {
	path := pathEnv
	if path == "" {
		path = pathDefault
	}

	var out []string
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if info.Mode()&0o111 == 0 {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

func filenameCandidates(prefix string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Session holds the sorted candidate snapshot and cycling index for one
// completion interaction, owned by the line editor and discarded on any
// non-tab keystroke. A fresh Session is "idle"; each call to Next on an
// idle session (re)computes the candidate list and reports it without
// advancing, matching the "first tab shows the list" rule. Subsequent calls
// cycle through the snapshot.
type Session struct {
	candidates []string
	index      int
	cycling    bool
}

// Result describes what the line editor should do after a Tab press.
type Result struct {
	// Candidates is the full sorted list, non-nil only on the first Tab of
	// a multi-candidate session (when the caller should print it).
	Candidates []string
	// Completion is the word to insert, valid when Count > 0.
	Completion string
	// Count is 0 (no match), 1 (unique match), or the candidate count (cycling).
	Count int
}

// Next advances the session for one Tab press at the given line/cursor and
// PATH configuration.
func (s *Session) Next(line string, cursor int, pathEnv, pathDefault string) Result {
	if !s.cycling {
		list := candidates(line, cursor, pathEnv, pathDefault)
		switch len(list) {
		case 0:
			return Result{Count: 0}
		case 1:
			return Result{Count: 1, Completion: list[0]}
		default:
			s.candidates = list
			s.index = 0
			s.cycling = true
			return Result{Count: len(list), Candidates: list, Completion: list[0]}
		}
	}

	s.index = (s.index + 1) % len(s.candidates)
	return Result{Count: len(s.candidates), Completion: s.candidates[s.index]}
}

// Reset discards cycling state, returning the session to idle. Any
// keystroke other than Tab calls this.
func (s *Session) Reset() {
	s.candidates = nil
	s.index = 0
	s.cycling = false
}
