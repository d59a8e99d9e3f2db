package main

import "testing"

func TestRootCommandHasCommandFlagAndHiddenStageSubcommand(t *testing.T) {
	root := newRootCmd()

	if root.Flags().Lookup("command") == nil {
		t.Fatalf("expected a --command/-c flag on the root command")
	}

	stage, _, err := root.Find([]string{"__stage__", "3"})
	if err != nil {
		t.Fatalf("Find(__stage__): %v", err)
	}
	if stage.Use != "__stage__ <fd>" {
		t.Fatalf("Use = %q", stage.Use)
	}
	if !stage.Hidden {
		t.Fatalf("expected __stage__ subcommand to be hidden")
	}
}

func TestStageSubcommandRejectsNonNumericFd(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"__stage__", "not-a-number"})
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error for a non-numeric fd argument")
	}
}
