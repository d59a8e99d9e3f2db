package execengine

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"ebash/internal/alias"
	"ebash/internal/builtin"
	"ebash/internal/history"
	"ebash/internal/jobs"
	"ebash/internal/parser"
)

func newEngine(t *testing.T, out *bytes.Buffer) *Engine {
	t.Helper()
	return &Engine{
		Builtins: &builtin.Context{
			Aliases: &alias.Table{},
			History: history.New(10, ""),
			Jobs:    &jobs.Table{},
			Stdin:   strings.NewReader(""),
		},
		Jobs:  &jobs.Table{},
		Out:   out,
		TTYFd: -1,
	}
}

func TestRunInlineBuiltinWritesToOut(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(t, &out)

	seq := parser.Sequence{Pipelines: []parser.Pipeline{
		{Stages: []parser.Stage{{Args: []string{"echo", "hello"}}}},
	}}
	running := true
	status := e.RunSequence(seq, &running)
	if status != 0 {
		t.Fatalf("status = %d, want 0", status)
	}
	if got := out.String(); got != "hello\n" {
		t.Fatalf("out = %q, want %q", got, "hello\n")
	}
}

func TestRunInlineBuiltinRedirectsToFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	var out bytes.Buffer
	e := newEngine(t, &out)

	seq := parser.Sequence{Pipelines: []parser.Pipeline{{
		Stages: []parser.Stage{{
			Args:  []string{"echo", "redirected"},
			Redir: []parser.Redirection{{Kind: parser.RedirOut, File: target}},
		}},
	}}}
	running := true
	e.RunSequence(seq, &running)

	contents, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(contents) != "redirected\n" {
		t.Fatalf("file contents = %q", contents)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing written to shell Out, got %q", out.String())
	}
}

func TestRunInlineBuiltinExitSetsStatusAndRequestFlag(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(t, &out)

	requested := -1
	e.Builtins.RequestExit = func(code int) { requested = code }

	seq := parser.Sequence{Pipelines: []parser.Pipeline{
		{Stages: []parser.Stage{{Args: []string{"exit", "7"}}}},
	}}
	running := true
	status := e.RunSequence(seq, &running)

	if status != 7 {
		t.Fatalf("status = %d, want 7", status)
	}
	if requested != 7 {
		t.Fatalf("RequestExit called with %d, want 7", requested)
	}
}

func TestEmptyPipelineIsNoop(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(t, &out)

	seq := parser.Sequence{Pipelines: []parser.Pipeline{{}}}
	running := true
	status := e.RunSequence(seq, &running)
	if status != 0 {
		t.Fatalf("status = %d, want 0", status)
	}
}

func TestStageSpecRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := StageSpec{
		Argv:   []string{"grep", "-n", "foo"},
		Redirs: []parser.Redirection{{Kind: parser.RedirAppend, File: "log.txt"}},
	}
	if err := EncodeTo(&buf, want); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	got, err := DecodeFrom(&buf)
	if err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if len(got.Argv) != 3 || got.Argv[2] != "foo" {
		t.Fatalf("Argv = %v", got.Argv)
	}
	if len(got.Redirs) != 1 || got.Redirs[0].File != "log.txt" {
		t.Fatalf("Redirs = %v", got.Redirs)
	}
}

func TestStageSpecRoundTripCarriesSharedStateSnapshots(t *testing.T) {
	var buf bytes.Buffer
	want := StageSpec{
		Argv:       []string{"alias"},
		Aliases:    map[string]string{"ll": "ls -la"},
		AliasCap:   42,
		History:    []string{"echo hi", "echo bye"},
		HistoryCap: 7,
		Jobs:       []jobs.Job{{PGID: 123, CommandLine: "sleep 5", Background: true}},
	}
	if err := EncodeTo(&buf, want); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	got, err := DecodeFrom(&buf)
	if err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if got.Aliases["ll"] != "ls -la" || got.AliasCap != 42 {
		t.Fatalf("Aliases = %v cap=%d", got.Aliases, got.AliasCap)
	}
	if len(got.History) != 2 || got.HistoryCap != 7 {
		t.Fatalf("History = %v cap=%d", got.History, got.HistoryCap)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].PGID != 123 {
		t.Fatalf("Jobs = %v", got.Jobs)
	}
}

func TestFindInPathBypassesSearchOnSlash(t *testing.T) {
	path, ok := FindInPath("./foo", "/nonexistent")
	if !ok || path != "./foo" {
		t.Fatalf("FindInPath(./foo) = %q, %v", path, ok)
	}
}

func TestFindInPathSearchesDirectories(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "mytool")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	path, ok := FindInPath("mytool", dir)
	if !ok || path != bin {
		t.Fatalf("FindInPath = %q, %v, want %q, true", path, ok, bin)
	}
}

func TestFindInPathReportsNotFound(t *testing.T) {
	_, ok := FindInPath("definitely-not-a-real-command", t.TempDir())
	if ok {
		t.Fatalf("expected not found")
	}
}

func TestExitStatusOfNilIsZero(t *testing.T) {
	if got := exitStatusOf(nil); got != 0 {
		t.Fatalf("exitStatusOf(nil) = %d", got)
	}
}

func TestExitStatusOfNonZeroExit(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 3")
	err := cmd.Run()
	if got := exitStatusOf(err); got != 3 {
		t.Fatalf("exitStatusOf = %d, want 3", got)
	}
}

func TestExitStatusOfSignaled(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "kill -TERM $$")
	err := cmd.Run()
	if err == nil {
		t.Skip("child did not report signal termination in this environment")
	}
	got := exitStatusOf(err)
	if got != 128+int(syscall.SIGTERM) {
		t.Fatalf("exitStatusOf = %d, want %d", got, 128+int(syscall.SIGTERM))
	}
}

func TestOpenRedirectionsForBuiltinCleansUp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")

	_, out, cleanup, err := openRedirectionsForBuiltin([]parser.Redirection{
		{Kind: parser.RedirOut, File: target},
	})
	if err != nil {
		t.Fatalf("openRedirectionsForBuiltin: %v", err)
	}
	if out == nil {
		t.Fatalf("expected non-nil out file")
	}
	cleanup()

	if _, err := out.WriteString("x"); err == nil {
		t.Fatalf("expected write after cleanup to fail")
	}
}

func TestStageCommandLine(t *testing.T) {
	p := parser.Pipeline{Stages: []parser.Stage{{Args: []string{"ls", "-la"}}}}
	if got := stageCommandLine(p); got != "ls" {
		t.Fatalf("stageCommandLine = %q, want %q", got, "ls")
	}
	if got := stageCommandLine(parser.Pipeline{}); got != "" {
		t.Fatalf("stageCommandLine(empty) = %q", got)
	}
}
