// Package execengine orchestrates pipeline execution: redirection setup,
// process-group and controlling-terminal management, foreground and
// background waiting, and the builtin-vs-external dispatch decision. A
// single foreground builtin runs directly in the shell process; every
// other stage runs as a re-exec'd copy of the shell's own binary acting
// as a disposable worker (see stage.go), since the Go runtime has no
// safe equivalent of continuing after a bare fork().
package execengine

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"ebash/internal/builtin"
	"ebash/internal/jobs"
	"ebash/internal/parser"
)

// Engine runs parsed pipelines against a shared builtin Context and job
// table. SelfPath is the shell's own executable, re-exec'd once per
// non-fast-path stage; TTYFd is the controlling terminal's descriptor
// used for foreground/background handoff (StdinFd when interactive).
type Engine struct {
	Builtins *builtin.Context
	Jobs     *jobs.Table
	Out      io.Writer

	SelfPath string
	TTYFd    int
	PathEnv  string
}

// RunSequence runs every pipeline in seq in order, stopping early if a
// builtin (namely exit) has requested shell termination.
func (e *Engine) RunSequence(seq parser.Sequence, running *bool) int {
	status := e.Builtins.LastStatus
	for _, p := range seq.Pipelines {
		status = e.runPipeline(p)
		e.Builtins.LastStatus = status
		if !*running {
			break
		}
	}
	return status
}

func (e *Engine) runPipeline(p parser.Pipeline) int {
	if len(p.Stages) == 0 {
		return e.Builtins.LastStatus
	}

	if len(p.Stages) == 1 && builtin.IsBuiltin(p.Stages[0].Args[0]) && !p.Background {
		return e.runInlineBuiltin(p.Stages[0])
	}
	return e.runForked(p)
}

// runInlineBuiltin is the no-fork fast path: a single foreground builtin
// runs directly in the shell process, with its redirections resolved to
// plain io.Writer/io.Reader values rather than real fd surgery.
func (e *Engine) runInlineBuiltin(stage parser.Stage) int {
	in, out, cleanup, err := openRedirectionsForBuiltin(stage.Redir)
	defer cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	writer := e.Out
	if out != nil {
		writer = out
	}

	savedStdin := e.Builtins.Stdin
	if in != nil {
		e.Builtins.Stdin = in
	}
	defer func() { e.Builtins.Stdin = savedStdin }()

	status, err := builtin.Execute(e.Builtins, stage.Args, writer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return status
}

// runForked walks the pipeline's stages left to right, wiring a pipe
// between each consecutive pair and launching a re-exec'd stage child
// for each one, then waits (foreground) or registers a job
// (background).
func (e *Engine) runForked(p parser.Pipeline) int {
	var cmds []*exec.Cmd
	var pgid int

	inFile := os.Stdin
	for i, stage := range p.Stages {
		isLast := i == len(p.Stages)-1

		var outFile *os.File
		var pipeReader *os.File
		if !isLast {
			r, w, err := os.Pipe()
			if err != nil {
				fmt.Fprintf(os.Stderr, "ebash: pipe: %v\n", err)
				return 1
			}
			outFile = w
			pipeReader = r
		} else {
			outFile = os.Stdout
		}

		cmd, err := e.startStage(stage, inFile, outFile, pgid, p.Background)
		if inFile != os.Stdin {
			inFile.Close()
		}
		if outFile != os.Stdout {
			outFile.Close()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ebash: %v\n", err)
		} else {
			cmds = append(cmds, cmd)
			if pgid == 0 {
				pgid = cmd.Process.Pid
			}
		}

		inFile = pipeReader
	}

	if len(cmds) == 0 {
		return 1
	}

	if p.Background {
		cmdline := stageCommandLine(p)
		e.Jobs.Add(pgid, cmdline, true)
		fmt.Fprintf(e.Out, "[bg] started %d\n", pgid)
		return 0
	}

	return e.waitForeground(cmds, pgid)
}

func (e *Engine) startStage(stage parser.Stage, in, out *os.File, pgid int, background bool) (*exec.Cmd, error) {
	ctlR, ctlW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	defer ctlR.Close()

	cmd := exec.Command(e.SelfPath, "__stage__", "3")
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{ctlR}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}

	if err := cmd.Start(); err != nil {
		ctlW.Close()
		return nil, err
	}

	spec := StageSpec{
		Argv:       stage.Args,
		Redirs:     stage.Redir,
		Aliases:    e.Builtins.Aliases.Snapshot(),
		AliasCap:   e.Builtins.Aliases.Cap,
		History:    e.Builtins.History.Entries(),
		HistoryCap: e.Builtins.History.Cap(),
		Jobs:       e.Jobs.Snapshot(),
	}
	encErr := EncodeTo(ctlW, spec)
	ctlW.Close()
	if encErr != nil {
		return cmd, encErr
	}

	if pgid == 0 {
		pgid = cmd.Process.Pid
	}
	if !background {
		e.grantTerminal(pgid)
	}

	return cmd, nil
}

func (e *Engine) grantTerminal(pgid int) {
	if e.TTYFd < 0 {
		return
	}
	_ = unix.IoctlSetPointerInt(e.TTYFd, unix.TIOCSPGRP, pgid)
}

func (e *Engine) reclaimTerminal() {
	if e.TTYFd < 0 {
		return
	}
	_ = unix.IoctlSetPointerInt(e.TTYFd, unix.TIOCSPGRP, unix.Getpgrp())
}

func (e *Engine) waitForeground(cmds []*exec.Cmd, pgid int) int {
	status := 0
	for i, cmd := range cmds {
		err := cmd.Wait()
		if i != len(cmds)-1 {
			continue
		}
		status = exitStatusOf(err)
	}
	e.reclaimTerminal()
	return status
}

func exitStatusOf(err error) int {
	if err == nil {
		return 0
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return 1
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 1
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ws.ExitStatus()
}

func stageCommandLine(p parser.Pipeline) string {
	if len(p.Stages) == 0 || len(p.Stages[0].Args) == 0 {
		return ""
	}
	return p.Stages[0].Args[0]
}
