// Package alias implements the shell's name-to-value alias table and
// head-of-line recursive expansion.
package alias

import (
	"fmt"
	"strings"
)

// MaxAliases bounds the table size, matching the original shell's ALIAS_MAX.
const MaxAliases = 100

// maxExpansionDepth bounds recursive alias expansion to prevent loops.
const maxExpansionDepth = 10

// separators are the bytes that end the head word of a command line.
const separators = " \t|;&<>"

// Table is an unordered name->value map with a bounded size. Last-write-wins
// on re-set. The zero value is ready to use and caps at MaxAliases; set Cap
// to override (e.g. from config.Config.AliasLimit).
type Table struct {
	values map[string]string
	Cap    int
}

// Set stores name=value. If name already exists it is replaced in place
// (not counted twice against the cap). Setting at the cap with a new name
// fails with an error diagnostic.
func (t *Table) Set(name, value string) error {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	cap := t.Cap
	if cap <= 0 {
		cap = MaxAliases
	}
	if _, exists := t.values[name]; !exists && len(t.values) >= cap {
		return fmt.Errorf("ebash: alias: too many aliases")
	}
	t.values[name] = value
	return nil
}

// FromSnapshot builds a Table pre-populated from values, capped at cap
// (<=0 falls back to MaxAliases). Used to hand a re-exec'd stage child a
// copy of the shell's alias table, since it cannot inherit it directly.
func FromSnapshot(values map[string]string, cap int) *Table {
	t := &Table{Cap: cap}
	if len(values) > 0 {
		t.values = make(map[string]string, len(values))
		for k, v := range values {
			t.values[k] = v
		}
	}
	return t
}

// Snapshot returns a copy of the table's contents, suitable for handing to
// FromSnapshot.
func (t *Table) Snapshot() map[string]string {
	out := make(map[string]string, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Unset removes name if present; it is a no-op otherwise.
func (t *Table) Unset(name string) {
	delete(t.values, name)
}

// Get returns the stored value for name, if any.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns the alias names in no particular order, for listing.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.values))
	for n := range t.values {
		names = append(names, n)
	}
	return names
}

// Expand rewrites the head word of line if it names an alias, recursively
// re-expanding the result (bounded to ten levels). It returns ok=false when
// no expansion was performed, leaving the caller to use the original line.
// Expansion only ever touches the head of the command, never arguments.
func (t *Table) Expand(line string) (string, bool) {
	expanded, ok := t.expandOnce(line, 0)
	return expanded, ok
}

func (t *Table) expandOnce(line string, depth int) (string, bool) {
	if depth > maxExpansionDepth {
		return "", false
	}

	trimmed := strings.TrimLeft(line, " \t")
	end := strings.IndexAny(trimmed, separators)
	var head, rest string
	if end < 0 {
		head, rest = trimmed, ""
	} else {
		head, rest = trimmed[:end], trimmed[end:]
	}
	if head == "" {
		return "", false
	}

	value, ok := t.Get(head)
	if !ok {
		return "", false
	}

	candidate := value + rest
	if further, ok := t.expandOnce(candidate, depth+1); ok {
		return further, true
	}
	return candidate, true
}
