// Package builtin implements the shell builtin commands: the sixteen the
// original project dispatches internally (cd, pwd, exit, export, unset,
// jobs, echo, grep, ls, alias, unalias, history, touch, mkdir, rm, cat)
// plus ps and kill, carried over from the teacher shell's own builtin
// set. A single foreground builtin runs in the shell's own process, so cd
// and export can mutate shell-wide state directly; a builtin inside a
// multi-stage or background pipeline runs in a re-exec'd stage child.
package builtin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"
	"golang.org/x/sys/unix"

	"ebash/internal/alias"
	"ebash/internal/history"
	"ebash/internal/jobs"
	"ebash/internal/termguard"
)

const (
	colorRed   = "\033[31m"
	colorBlue  = "\033[94m"
	colorReset = "\033[0m"
)

// isColorWriter reports whether writer is a terminal, mirroring the
// teacher's "--color=always when stdout is a tty" heuristic for ls and
// grep. There the two ran as external processes and got the flag
// appended to their argv; here they are builtins, so the colorizing
// happens directly in the output they write.
func isColorWriter(writer io.Writer) bool {
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return termguard.IsTerminal(int(f.Fd()))
}

var names = map[string]bool{
	"cd": true, "pwd": true, "exit": true, "export": true, "unset": true,
	"jobs": true, "echo": true, "grep": true, "ls": true, "alias": true,
	"unalias": true, "history": true, "touch": true, "mkdir": true,
	"rm": true, "cat": true, "ps": true, "kill": true,
}

// IsBuiltin reports whether name is dispatched internally rather than
// searched for on PATH.
func IsBuiltin(name string) bool {
	return names[name]
}

// Context bundles the shell-wide collaborators builtins need: the alias
// table, the history ring, the background job table, and the callback
// that requests shell termination (exit's job is to flip that flag, not
// to call os.Exit directly — the REPL loop decides when to actually
// stop, mirroring the original's sh->running check).
type Context struct {
	Aliases *alias.Table
	History *history.History
	Jobs    *jobs.Table
	Stdin   io.Reader

	RequestExit func(code int)
	LastStatus  int
}

// Execute runs a builtin command and returns its exit status. writer
// receives the builtin's stdout-equivalent output, already redirected by
// the caller when the builtin is mid-pipeline.
func Execute(ctx *Context, command []string, writer io.Writer) (int, error) {
	switch command[0] {
	case "cd":
		return changeDirectory(command)
	case "pwd":
		return printWorkingDirectory(writer)
	case "exit":
		return exitBuiltin(ctx, command)
	case "export":
		return export(command)
	case "unset":
		return unset(command)
	case "jobs":
		ctx.Jobs.Print(writer)
		return 0, nil
	case "echo":
		return echo(command, writer)
	case "grep":
		return grep(ctx, command, writer)
	case "ls":
		return ls(command, writer)
	case "alias":
		return aliasCmd(ctx, command, writer)
	case "unalias":
		return unaliasCmd(ctx, command)
	case "history":
		ctx.History.Print(writer)
		return 0, nil
	case "touch":
		return touch(command)
	case "mkdir":
		return mkdirCmd(command)
	case "rm":
		return rm(command)
	case "cat":
		return cat(ctx, command, writer)
	case "ps":
		return processStatus(writer)
	case "kill":
		return kill(command)
	}

	return 1, fmt.Errorf("ebash: %s: not a builtin", command[0])
}

func changeDirectory(command []string) (int, error) {
	var dir string

	switch {
	case len(command) == 1:
		dir = os.Getenv("HOME")
		if dir == "" {
			dir = "/"
		}
	case len(command) > 2:
		return 1, fmt.Errorf("ebash: cd: too many arguments")
	default:
		dir = command[1]
	}

	if err := os.Chdir(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 1, fmt.Errorf("ebash: cd: %s: No such file or directory", dir)
		}
		return 1, fmt.Errorf("ebash: cd: %w", err)
	}
	return 0, nil
}

func printWorkingDirectory(writer io.Writer) (int, error) {
	dir, err := os.Getwd()
	if err != nil {
		return 1, fmt.Errorf("ebash: pwd: %w", err)
	}
	fmt.Fprintln(writer, dir)
	return 0, nil
}

func exitBuiltin(ctx *Context, command []string) (int, error) {
	code := ctx.LastStatus
	if len(command) > 1 {
		n, err := strconv.Atoi(command[1])
		if err != nil {
			return 1, fmt.Errorf("ebash: exit: %s: numeric argument required", command[1])
		}
		code = n
	}
	if ctx.RequestExit != nil {
		ctx.RequestExit(code)
	}
	return code, nil
}

func export(command []string) (int, error) {
	for _, arg := range command[1:] {
		name, val, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "ebash: export: invalid format: %s\n", arg)
			continue
		}
		if err := os.Setenv(name, val); err != nil {
			return 1, fmt.Errorf("ebash: export: %w", err)
		}
	}
	return 0, nil
}

func unset(command []string) (int, error) {
	for _, name := range command[1:] {
		if err := os.Unsetenv(name); err != nil {
			return 1, fmt.Errorf("ebash: unset: %w", err)
		}
	}
	return 0, nil
}

// echo prints its arguments separated by spaces. A lone "-n" in argument
// position one suppresses the trailing newline; no other flag or
// combined-flag parsing is recognized.
func echo(command []string, writer io.Writer) (int, error) {
	args := command[1:]
	newline := true
	if len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	fmt.Fprint(writer, strings.Join(args, " "))
	if newline {
		fmt.Fprintln(writer)
	}
	return 0, nil
}

func grep(ctx *Context, command []string, writer io.Writer) (int, error) {
	if len(command) < 2 {
		return 1, fmt.Errorf("grep: missing PATTERN")
	}
	pattern := command[1]
	matched := false
	color := isColorWriter(writer)

	search := func(r io.Reader) {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := sc.Text()
			if strings.Contains(line, pattern) {
				if color {
					line = strings.ReplaceAll(line, pattern, colorRed+pattern+colorReset)
				}
				fmt.Fprintln(writer, line)
				matched = true
			}
		}
	}

	if len(command) == 2 {
		search(ctx.Stdin)
	} else {
		for _, fname := range command[2:] {
			f, err := os.Open(fname)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", fname, err)
				continue
			}
			search(f)
			f.Close()
		}
	}

	if matched {
		return 0, nil
	}
	return 1, nil
}

func ls(command []string, writer io.Writer) (int, error) {
	args := command[1:]
	if len(args) == 0 {
		args = []string{"."}
	}
	color := isColorWriter(writer)

	status := 0
	for i, path := range args {
		st, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			status = 1
			continue
		}
		if !st.IsDir() {
			fmt.Fprintln(writer, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			status = 1
			continue
		}
		if len(args) > 1 {
			fmt.Fprintf(writer, "%s:\n", path)
		}
		for _, e := range entries {
			name := e.Name()
			if color && e.IsDir() {
				name = colorBlue + name + colorReset
			}
			fmt.Fprintln(writer, name)
		}
		if len(args) > 1 && i < len(args)-1 {
			fmt.Fprintln(writer)
		}
	}
	return status, nil
}

func aliasCmd(ctx *Context, command []string, writer io.Writer) (int, error) {
	if len(command) == 1 {
		names := ctx.Aliases.Names()
		sort.Strings(names)
		for _, n := range names {
			v, _ := ctx.Aliases.Get(n)
			fmt.Fprintf(writer, "alias %s='%s'\n", n, v)
		}
		return 0, nil
	}

	for _, arg := range command[1:] {
		if name, value, ok := strings.Cut(arg, "="); ok {
			if err := ctx.Aliases.Set(name, value); err != nil {
				return 1, fmt.Errorf("ebash: alias: %w", err)
			}
			continue
		}
		if v, ok := ctx.Aliases.Get(arg); ok {
			fmt.Fprintf(writer, "alias %s='%s'\n", arg, v)
		}
	}
	return 0, nil
}

func unaliasCmd(ctx *Context, command []string) (int, error) {
	if len(command) < 2 {
		return 1, fmt.Errorf("unalias: missing argument")
	}
	for _, name := range command[1:] {
		ctx.Aliases.Unset(name)
	}
	return 0, nil
}

func touch(command []string) (int, error) {
	if len(command) < 2 {
		return 1, fmt.Errorf("touch: missing file operand")
	}
	status := 0
	for _, name := range command[1:] {
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			status = 1
			continue
		}
		if err := unix.Utimensat(unix.AT_FDCWD, name, nil, 0); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			status = 1
		}
		f.Close()
	}
	return status, nil
}

func mkdirCmd(command []string) (int, error) {
	args := command[1:]
	if len(args) == 0 {
		return 1, fmt.Errorf("mkdir: missing operand")
	}

	parents := false
	if args[0] == "-p" {
		parents = true
		args = args[1:]
		if len(args) == 0 {
			return 1, fmt.Errorf("mkdir: missing operand")
		}
	}

	status := 0
	for _, dir := range args {
		var err error
		if parents {
			err = os.MkdirAll(dir, 0o755)
		} else {
			err = os.Mkdir(dir, 0o755)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", dir, err)
			status = 1
		}
	}
	return status, nil
}

func rm(command []string) (int, error) {
	args := command[1:]
	recursive, force := false, false
	i := 0
	for ; i < len(args); i++ {
		if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
			break
		}
		for _, c := range args[i][1:] {
			switch c {
			case 'r', 'R':
				recursive = true
			case 'f':
				force = true
			}
		}
	}
	args = args[i:]
	if len(args) == 0 {
		return 1, fmt.Errorf("rm: missing operand")
	}

	status := 0
	for _, path := range args {
		st, err := os.Lstat(path)
		if err != nil {
			if !force {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				status = 1
			}
			continue
		}
		if st.IsDir() {
			if !recursive {
				if !force {
					fmt.Fprintf(os.Stderr, "rm: cannot remove '%s': Is a directory\n", path)
				}
				status = 1
				continue
			}
			if err := os.RemoveAll(path); err != nil && !force {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				status = 1
			}
			continue
		}
		if err := os.Remove(path); err != nil && !force {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			status = 1
		}
	}
	return status, nil
}

func cat(ctx *Context, command []string, writer io.Writer) (int, error) {
	if len(command) < 2 {
		_, err := io.Copy(writer, ctx.Stdin)
		if err != nil {
			return 1, fmt.Errorf("ebash: cat: %w", err)
		}
		return 0, nil
	}

	status := 0
	for _, name := range command[1:] {
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			status = 1
			continue
		}
		if _, err := io.Copy(writer, f); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			status = 1
		}
		f.Close()
	}
	return status, nil
}

func kill(command []string) (int, error) {
	if len(command) < 2 {
		return 1, fmt.Errorf("kill: usage: kill pid")
	}
	pid, err := strconv.Atoi(command[1])
	if err != nil {
		return 1, fmt.Errorf("ebash: kill: %s: arguments must be process or job IDs", command[1])
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return 1, fmt.Errorf("ebash: kill: (%d) - Operation not permitted", pid)
	}
	return 0, nil
}

func processStatus(writer io.Writer) (int, error) {
	path, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return 1, fmt.Errorf("ebash: ps: %w", err)
	}
	re := regexp.MustCompile(fmt.Sprintf(`/dev/pts/%s$`, filepath.Base(path)))

	processes, err := ps.Processes()
	if err != nil {
		return 1, fmt.Errorf("ebash: ps: %w", err)
	}

	fmt.Fprintln(writer, "    PID TTY          TIME CMD")
	for _, p := range processes {
		link, err := os.Readlink(fmt.Sprintf("/proc/%d/fd/0", p.Pid()))
		if err == nil && re.MatchString(link) {
			fmt.Fprintf(writer, "%7d pts/%-8s 00:00:00 %s\n", p.Pid(), filepath.Base(path), p.Executable())
		}
	}
	return 0, nil
}
