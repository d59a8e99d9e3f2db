// Package lineeditor implements the shell's interactive read loop: a
// raw-mode terminal input loop maintaining an edit buffer with a cursor,
// history navigation on the arrow keys, and Tab-triggered completion that
// can print a candidate list and cycle through it. When standard input is
// not a terminal it degrades to a plain line read.
package lineeditor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ebash/internal/completion"
	"ebash/internal/history"
	"ebash/internal/termguard"
)

// ErrEndOfInput is returned when end-of-stream is reached with an empty
// buffer, signalling the REPL to stop.
var ErrEndOfInput = errors.New("lineeditor: end of input")

const (
	keyTab        = '\t'
	keyBackspace  = 127
	keyBackspace2 = 8
	keyEsc        = 27
)

// Editor reads one logical line at a time from a terminal (or, when stdin
// is not a terminal, from a plain buffered reader). PathEnv/PathDefault
// feed the completion engine's command-context search; History backs
// arrow-key navigation.
type Editor struct {
	In      *os.File
	Out     io.Writer
	History *history.History
	Prompt  func() string

	PathEnv         string
	PathDefault     string
	DescribeBuiltin bool

	plain *bufio.Reader
}

// ReadLine reads one logical line of input. On a terminal it runs the full
// raw-mode editing loop; otherwise it reads a plain line. It returns
// ErrEndOfInput when the stream ends with nothing typed.
func (e *Editor) ReadLine() (string, error) {
	if !termguard.IsTerminal(int(e.In.Fd())) {
		return e.readPlain()
	}
	return e.readInteractive()
}

func (e *Editor) readPlain() (string, error) {
	if e.plain == nil {
		e.plain = bufio.NewReader(e.In)
	}
	line, err := e.plain.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrEndOfInput
			}
			return line, nil
		}
		return "", err
	}
	return line, nil
}

// editState is the mutable state of one readInteractive call.
type editState struct {
	buf     []byte
	cursor  int
	session completion.Session
}

func (e *Editor) readInteractive() (string, error) {
	var guard termguard.Guard
	if err := guard.Acquire(int(e.In.Fd())); err != nil {
		// Raw-mode acquisition failure: fall back to cooked input rather
		// than fail the whole shell.
		return e.readPlain()
	}
	defer guard.Release()

	e.History.ResetBrowse()

	st := &editState{}
	br := bufio.NewReaderSize(e.In, 1)

	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(st.buf) == 0 {
					return "", ErrEndOfInput
				}
				break
			}
			return "", err
		}

		switch {
		case b == '\n' || b == '\r':
			ffprint(e.Out, "\n")
			return string(st.buf), nil
		case b == keyEsc:
			e.handleEscape(br, st)
		case b == keyTab:
			e.handleTab(st)
		case b == keyBackspace || b == keyBackspace2:
			e.handleBackspace(st)
		case b >= 32 && b <= 126:
			st.session.Reset()
			e.insertByte(st, b)
		default:
			// ignore all other bytes
		}
	}

	return string(st.buf), nil
}

func ffprint(w io.Writer, s string) { _, _ = io.WriteString(w, s) }

// handleEscape processes `ESC [ X` cursor-key sequences. Any other or
// incomplete sequence is ignored.
func (e *Editor) handleEscape(br *bufio.Reader, st *editState) {
	st.session.Reset()
	b1, err := br.ReadByte()
	if err != nil || b1 != '[' {
		return
	}
	b2, err := br.ReadByte()
	if err != nil {
		return
	}

	switch b2 {
	case 'A':
		e.historyNav(st, 1)
	case 'B':
		e.historyNav(st, -1)
	case 'C':
		st.session.Reset()
		if st.cursor < len(st.buf) {
			st.cursor++
			ffprint(e.Out, "\033[C")
		}
	case 'D':
		st.session.Reset()
		if st.cursor > 0 {
			st.cursor--
			ffprint(e.Out, "\033[D")
		}
	}
}

func (e *Editor) historyNav(st *editState, direction int) {
	e.clearLine(st)

	line, ok := e.History.Get(direction)
	if !ok {
		st.buf = st.buf[:0]
		st.cursor = 0
		return
	}
	st.buf = append(st.buf[:0], line...)
	st.cursor = len(st.buf)
	ffprint(e.Out, string(st.buf))
}

// clearLine erases the currently visible line (cursor back to the start,
// then blank over the rest) without touching the edit buffer itself.
func (e *Editor) clearLine(st *editState) {
	for i := 0; i < st.cursor; i++ {
		ffprint(e.Out, "\b \b")
	}
	for i := st.cursor; i < len(st.buf); i++ {
		ffprint(e.Out, " \b")
	}
}

func (e *Editor) insertByte(st *editState, b byte) {
	st.buf = append(st.buf, 0)
	copy(st.buf[st.cursor+1:], st.buf[st.cursor:])
	st.buf[st.cursor] = b
	st.cursor++

	_, _ = e.Out.Write([]byte{b})
	tail := st.buf[st.cursor:]
	if len(tail) > 0 {
		_, _ = e.Out.Write(tail)
		for range tail {
			ffprint(e.Out, "\b")
		}
	}
}

func (e *Editor) handleBackspace(st *editState) {
	st.session.Reset()
	if st.cursor == 0 {
		return
	}
	copy(st.buf[st.cursor-1:], st.buf[st.cursor:])
	st.buf = st.buf[:len(st.buf)-1]
	st.cursor--

	ffprint(e.Out, "\b\033[K")
	tail := st.buf[st.cursor:]
	if len(tail) > 0 {
		_, _ = e.Out.Write(tail)
		for range tail {
			ffprint(e.Out, "\b")
		}
	}
}

func (e *Editor) handleTab(st *editState) {
	line := string(st.buf)
	res := st.session.Next(line, st.cursor, e.PathEnv, e.PathDefault)

	if res.Candidates != nil {
		e.printCandidateList(res.Candidates)
		if e.Prompt != nil {
			ffprint(e.Out, e.Prompt())
		}
		ffprint(e.Out, string(st.buf))
	}

	switch res.Count {
	case 0:
		ffprint(e.Out, "\a")
		return
	case 1:
		e.replaceWord(st, res.Completion)
	default:
		e.replaceWord(st, res.Completion)
	}
}

func (e *Editor) replaceWord(st *editState, completionWord string) {
	start := completion.WordBounds(string(st.buf), st.cursor)
	wordLen := st.cursor - start

	for i := 0; i < wordLen; i++ {
		ffprint(e.Out, "\b \b")
	}

	newBuf := make([]byte, 0, len(st.buf)-wordLen+len(completionWord))
	newBuf = append(newBuf, st.buf[:start]...)
	newBuf = append(newBuf, completionWord...)
	newBuf = append(newBuf, st.buf[st.cursor:]...)

	tailStart := start + len(completionWord)
	tail := newBuf[tailStart:]

	st.buf = newBuf
	st.cursor = tailStart

	ffprint(e.Out, completionWord)
	if len(tail) > 0 {
		_, _ = e.Out.Write(tail)
		for range tail {
			ffprint(e.Out, "\b")
		}
	}
}

func (e *Editor) printCandidateList(list []string) {
	w := e.Out
	writeLine(w, "\r\nAvailable completions:\r")
	writeLine(w, "─────────────────────────────────────────────────────────────\r")
	for i, name := range list {
		line := fmt.Sprintf("  %2d. %s", i+1, name)
		if e.DescribeBuiltin {
			if d := completion.Describe(name); d != "" {
				line += " - " + d
			}
		}
		writeLine(w, line+"\r")
	}
	writeLine(w, "─────────────────────────────────────────────────────────────\r")
	writeLine(w, "Press Tab again to cycle through matches, or type to continue.\r")
}

func writeLine(w io.Writer, s string) { _, _ = io.WriteString(w, s+"\n") }
