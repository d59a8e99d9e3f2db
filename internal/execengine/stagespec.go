package execengine

import (
	"encoding/gob"
	"io"

	"ebash/internal/jobs"
	"ebash/internal/parser"
)

// StageSpec is what a stage child needs that it cannot observe from its
// own inherited file descriptors and environment: the argument words
// (not yet glob-expanded — that happens in the child, per the engine's
// data flow), the stage's redirections, and a snapshot of the shared
// alias/history/job tables so a builtin dispatched in the child (e.g.
// one stage of a multi-stage pipeline, or any backgrounded pipeline)
// observes the same state a direct fork() would have copied. It travels
// from the shell process to the re-exec'd `__stage__` child over a
// dedicated pipe, gob-encoded.
type StageSpec struct {
	Argv   []string
	Redirs []parser.Redirection

	Aliases    map[string]string
	AliasCap   int
	History    []string
	HistoryCap int
	Jobs       []jobs.Job
}

// EncodeTo gob-encodes spec onto w.
func EncodeTo(w io.Writer, spec StageSpec) error {
	return gob.NewEncoder(w).Encode(spec)
}

// DecodeFrom gob-decodes a StageSpec from r.
func DecodeFrom(r io.Reader) (StageSpec, error) {
	var spec StageSpec
	err := gob.NewDecoder(r).Decode(&spec)
	return spec, err
}
