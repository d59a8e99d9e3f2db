// Package main is the entry point of the ebash shell: the interactive
// REPL, a `-c "<string>"` one-shot mode, and a hidden `__stage__`
// subcommand used internally by the execution engine to re-exec this
// same binary as a disposable pipeline-stage worker.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ebash/internal/config"
	"ebash/internal/execengine"
	"ebash/internal/shell"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ebash",
		Short: "a small POSIX-like interactive shell",
		Args:  cobra.ArbitraryArgs,
		RunE:  runInteractive,
	}
	root.Flags().StringP("command", "c", "", "run a single command string and exit")
	root.AddCommand(newStageCmd())
	return root
}

func runInteractive(cmd *cobra.Command, args []string) error {
	command, _ := cmd.Flags().GetString("command")

	self, err := os.Executable()
	if err != nil {
		self = "ebash"
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	sh := shell.New(cfg, self)

	if command != "" {
		status := sh.RunLine(command)
		os.Exit(status)
	}

	os.Exit(sh.Run())
	return nil
}

// newStageCmd builds the hidden `__stage__ <fd>` subcommand: the entry
// point of a re-exec'd pipeline-stage worker (see internal/execengine's
// RunStage). It is never invoked directly by a user.
func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "__stage__ <fd>",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("ebash: __stage__: bad fd %q", args[0])
			}
			execengine.RunStage(fd)
			return nil
		},
	}
	return cmd
}
