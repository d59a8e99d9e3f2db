// Package parser turns a raw command line into a command graph: a sequence
// of pipelines, each a sequence of stages, each stage an argument list plus
// an ordered list of redirections. It is a single left-to-right hand-written
// scan with no lookahead beyond one byte, implementing the quoting and
// redirection rules of a small POSIX-ish grammar (no control-flow keywords,
// no command substitution, no parameter expansion).
package parser

import (
	"fmt"
	"strings"
)

// RedirKind identifies the direction and mode of a redirection.
type RedirKind int

const (
	// RedirIn redirects a stage's standard input from a file that must exist.
	RedirIn RedirKind = iota
	// RedirOut redirects a stage's standard output to a file, creating or
	// truncating it.
	RedirOut
	// RedirAppend redirects a stage's standard output to a file, creating it
	// if necessary and appending to existing contents.
	RedirAppend
)

// Redirection is one `<`, `>`, or `>>` applied to a stage. Redirections are
// stored in parse order; the execution engine applies them in that order, so
// a later redirection of the same stream overrides an earlier one.
type Redirection struct {
	Kind RedirKind
	File string
}

// Stage is a single command within a pipeline: an ordered argument list
// (argv[0] is the program name) and the redirections attached to it. A stage
// always has at least one argument; the parser never emits an empty stage.
type Stage struct {
	Args  []string
	Redir []Redirection
}

// Pipeline is a list of stages joined by `|`. Background is a property of
// the whole pipeline, copied onto every stage at execution time.
type Pipeline struct {
	Stages     []Stage
	Background bool
}

// Sequence is a list of pipelines to run left to right, separated by `;`
// in the source line. A newline is not a separator: outside quotes it is
// read as an ordinary word byte.
type Sequence struct {
	Pipelines []Pipeline
}

const metaBytes = "|;&<>"

func isMeta(b byte) bool {
	return strings.IndexByte(metaBytes, b) >= 0
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// scanner walks a line byte by byte. It never backtracks more than the
// current fragment.
type scanner struct {
	line string
	pos  int
}

func (s *scanner) eof() bool { return s.pos >= len(s.line) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.line[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.pos++
	}
}

// Parse converts a single logical line into a Sequence of pipelines. A
// syntax error (currently only "redirection with no following word") frees
// all partial state and returns it as an error; the caller drops the line
// and continues the REPL.
func Parse(line string) (Sequence, error) {
	s := &scanner{line: line}
	var seq Sequence

	for {
		s.skipSpace()
		if s.eof() {
			break
		}

		var pipeline Pipeline
		for {
			stage, err := parseStage(s)
			if err != nil {
				return Sequence{}, err
			}
			if len(stage.Args) > 0 {
				pipeline.Stages = append(pipeline.Stages, stage)
			}

			s.skipSpace()
			if s.peek() == '|' {
				s.pos++
				continue
			}
			break
		}

		if len(pipeline.Stages) == 0 {
			// Nothing but metacharacters between separators; skip it.
			s.skipTerminator()
			continue
		}

		s.skipSpace()
		if s.peek() == '&' {
			pipeline.Background = true
			s.pos++
		}
		s.skipSpace()
		if s.peek() == ';' {
			s.pos++
		}

		seq.Pipelines = append(seq.Pipelines, pipeline)
	}

	return seq, nil
}

// skipTerminator advances past a stray `&`/`;` so an empty section between
// separators doesn't loop forever.
func (s *scanner) skipTerminator() {
	s.skipSpace()
	for s.peek() == '&' || s.peek() == ';' {
		s.pos++
		s.skipSpace()
	}
}

// parseStage reads words and redirections until `|`, `;`, `&`, or end of
// line. The stage's argument order is word order; redirections are kept in
// a separate ordered list.
func parseStage(s *scanner) (Stage, error) {
	var stage Stage

	for {
		s.skipSpace()
		if s.eof() || s.peek() == '|' || s.peek() == ';' || s.peek() == '&' {
			break
		}

		if s.peek() == '<' || s.peek() == '>' {
			kind := RedirIn
			if s.peek() == '>' {
				s.pos++
				if s.peek() == '>' {
					kind = RedirAppend
					s.pos++
				} else {
					kind = RedirOut
				}
			} else {
				s.pos++
			}

			s.skipSpace()
			fname, ok := parseWord(s)
			if !ok {
				return Stage{}, fmt.Errorf("ebash: parser: syntax error: missing filename after redirection")
			}
			stage.Redir = append(stage.Redir, Redirection{Kind: kind, File: fname})
			continue
		}

		word, ok := parseWord(s)
		if ok {
			stage.Args = append(stage.Args, word)
		}
	}

	return stage, nil
}

// parseWord concatenates fragments (unquoted runs, backslash escapes,
// single- and double-quoted spans) into one argument token. It returns
// ok=false only when the scanner is positioned on a metacharacter or EOF
// with nothing to read.
func parseWord(s *scanner) (string, bool) {
	var b strings.Builder
	any := false

	for {
		if s.eof() {
			break
		}
		c := s.peek()

		switch {
		case isSpace(c) || isMeta(c):
			goto done
		case c == '\\':
			s.pos++
			if s.eof() {
				goto done
			}
			b.WriteByte(s.peek())
			s.pos++
			any = true
		case c == '\'':
			s.pos++
			for !s.eof() && s.peek() != '\'' {
				b.WriteByte(s.peek())
				s.pos++
			}
			if !s.eof() && s.peek() == '\'' {
				s.pos++
			}
			any = true
		case c == '"':
			s.pos++
			for !s.eof() && s.peek() != '"' {
				ch := s.peek()
				s.pos++
				if ch == '\\' && !s.eof() {
					esc := s.peek()
					s.pos++
					switch esc {
					case 'n':
						ch = '\n'
					case '"':
						ch = '"'
					case '\\':
						ch = '\\'
					default:
						ch = esc
					}
				}
				b.WriteByte(ch)
			}
			if !s.eof() && s.peek() == '"' {
				s.pos++
			}
			any = true
		default:
			b.WriteByte(c)
			s.pos++
			any = true
		}
	}

done:
	if !any {
		return "", false
	}
	return b.String(), true
}

// Serialize renders a Sequence back to a canonical command line: words
// space-joined, redirections in parse order, `|` between stages, `&` after
// background pipelines, `;` between pipelines. It is the inverse used by the
// parse(serialize(parse(L))) = parse(L) round-trip property.
func Serialize(seq Sequence) string {
	var b strings.Builder
	for i, p := range seq.Pipelines {
		if i > 0 {
			b.WriteString("; ")
		}
		for j, st := range p.Stages {
			if j > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(serializeStage(st))
		}
		if p.Background {
			b.WriteString(" &")
		}
	}
	return b.String()
}

func serializeStage(st Stage) string {
	var parts []string
	for _, a := range st.Args {
		parts = append(parts, quoteIfNeeded(a))
	}
	for _, r := range st.Redir {
		switch r.Kind {
		case RedirIn:
			parts = append(parts, "<", r.File)
		case RedirOut:
			parts = append(parts, ">", r.File)
		case RedirAppend:
			parts = append(parts, ">>", r.File)
		}
	}
	return strings.Join(parts, " ")
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return "''"
	}
	needsQuote := false
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) || isMeta(s[i]) || s[i] == '\'' || s[i] == '"' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
