package execengine

import (
	"fmt"
	"os"

	"ebash/internal/alias"
	"ebash/internal/builtin"
	"ebash/internal/glob"
	"ebash/internal/history"
	"ebash/internal/jobs"
	"ebash/internal/loader"
)

// RunStage is the entry point for the re-exec'd `ebash __stage__ <fd>`
// child: it decodes its StageSpec from the inherited control pipe at
// ctlFd, glob-expands its argument words, applies its redirections, and
// dispatches to either a builtin or the ELF loader. It always ends the
// process — directly via os.Exit for the builtin/not-found/error paths,
// or by never returning at all once the loader takes over.
func RunStage(ctlFd int) {
	ctl := os.NewFile(uintptr(ctlFd), "ebash-stage-ctl")
	spec, err := DecodeFrom(ctl)
	ctl.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ebash: stage: %v\n", err)
		os.Exit(127)
	}

	if err := applyRedirections(spec.Redirs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(127)
	}

	argv := glob.Expand(spec.Argv)
	if len(argv) == 0 {
		os.Exit(0)
	}

	if builtin.IsBuiltin(argv[0]) {
		ctx := &builtin.Context{
			Aliases: alias.FromSnapshot(spec.Aliases, spec.AliasCap),
			History: history.FromEntries(spec.History, spec.HistoryCap),
			Jobs:    jobs.FromSnapshot(spec.Jobs),
			Stdin:   os.Stdin,
		}
		status, err := builtin.Execute(ctx, argv, os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(status)
	}

	path, ok := FindInPath(argv[0], os.Getenv("PATH"))
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: command not found\n", argv[0])
		os.Exit(127)
	}

	if err := loader.Run(path, argv, os.Environ()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(127)
	}
}
