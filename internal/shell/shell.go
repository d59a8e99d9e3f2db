// Package shell wires every collaborator package into a single
// explicit state value and runs the REPL loop: reap finished
// background jobs, render the prompt, read a line, expand aliases,
// parse it into a sequence of pipelines, and execute it.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ebash/internal/alias"
	"ebash/internal/builtin"
	"ebash/internal/config"
	"ebash/internal/execengine"
	"ebash/internal/history"
	"ebash/internal/jobs"
	"ebash/internal/lineeditor"
	"ebash/internal/painter"
	"ebash/internal/parser"
	"ebash/internal/prompt"
	"ebash/internal/signalinit"
	"ebash/internal/termguard"
)

// Shell holds the runtime state threaded through one interactive
// session: history, aliases, the job table, the line editor, the
// execution engine, and whether the REPL loop should keep running.
type Shell struct {
	cfg *config.Config

	History *history.History
	Aliases *alias.Table
	Jobs    *jobs.Table

	editor  *lineeditor.Editor
	painter painter.Painter
	engine  *execengine.Engine

	stopSignals func()

	running    bool
	exitStatus int
}

// New builds a Shell from cfg (nil selects config.Default()) and the
// current executable's path (used to re-exec pipeline stages).
func New(cfg *config.Config, selfPath string) *Shell {
	if cfg == nil {
		cfg = config.Default()
	}

	hist := history.New(cfg.Terminal.HistoryLimit, cfg.Terminal.HistoryFile)
	hist.Init()

	aliases := &alias.Table{Cap: cfg.AliasLimit}
	jobTable := &jobs.Table{}

	s := &Shell{
		cfg:     cfg,
		History: hist,
		Aliases: aliases,
		Jobs:    jobTable,
		painter: painter.NewPainter(cfg.Prompt),
		running: true,
	}

	s.editor = &lineeditor.Editor{
		In:              os.Stdin,
		Out:             os.Stdout,
		History:         hist,
		Prompt:          func() string { return prompt.Update(s.painter) },
		PathEnv:         os.Getenv("PATH"),
		PathDefault:     cfg.PathFallback,
		DescribeBuiltin: cfg.DescribeBuiltin,
	}

	builtinCtx := &builtin.Context{
		Aliases:     aliases,
		History:     hist,
		Jobs:        jobTable,
		Stdin:       os.Stdin,
		RequestExit: func(code int) { s.running = false; s.exitStatus = code },
	}

	ttyFd := -1
	if termguard.IsTerminal(int(os.Stdin.Fd())) {
		ttyFd = termguard.StdinFd()
	}

	s.engine = &execengine.Engine{
		Builtins: builtinCtx,
		Jobs:     jobTable,
		Out:      os.Stdout,
		SelfPath: selfPath,
		TTYFd:    ttyFd,
		PathEnv:  os.Getenv("PATH"),
	}

	return s
}

// Run executes the interactive REPL until EOF, a fatal read error, or
// a builtin (exit) stops it, returning the shell's final exit status.
func (s *Shell) Run() int {
	s.stopSignals = signalinit.Init(os.Stdout)
	defer s.stopSignals()

	for s.running {
		s.Jobs.Reap(false, os.Stdout)

		fmt.Fprint(os.Stdout, prompt.Update(s.painter))
		line, err := s.editor.ReadLine()
		if err != nil {
			if errors.Is(err, lineeditor.ErrEndOfInput) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			break
		}

		s.RunLine(line)
	}

	return s.exitStatus
}

// RunLine expands aliases in line, parses it, and executes the
// resulting sequence of pipelines, updating the shell's exit status
// and history. Used by both the interactive loop and -c one-shot mode.
func (s *Shell) RunLine(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return s.exitStatus
	}
	s.History.Add(trimmed)

	expanded := trimmed
	if e, ok := s.Aliases.Expand(trimmed); ok {
		expanded = e
	}

	seq, err := parser.Parse(expanded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ebash: %v\n", err)
		s.exitStatus = 2
		return s.exitStatus
	}

	s.exitStatus = s.engine.RunSequence(seq, &s.running)
	return s.exitStatus
}

// RunScript executes each line of r in turn via RunLine, stopping
// early if a builtin requests shell termination. Returns the final
// exit status.
func (s *Shell) RunScript(r io.Reader) int {
	scanner := bufio.NewScanner(r)
	for s.running && scanner.Scan() {
		s.RunLine(scanner.Text())
	}
	return s.exitStatus
}
