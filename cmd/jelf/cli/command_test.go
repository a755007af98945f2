// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "jelf",
		Subcommands: []*Command{
			{
				Name: "hash",
				Run: func(args []string) error {
					called = "hash"
					return nil
				},
			},
			{
				Name: "inspect",
				Run: func(args []string) error {
					called = "inspect"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"inspect"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "inspect" {
		t.Errorf("dispatched to %q, want %q", called, "inspect")
	}
}

func TestCommand_Execute_PassesRemainingArgs(t *testing.T) {
	var receivedArgs []string

	root := &Command{
		Name: "jelf",
		Subcommands: []*Command{
			{
				Name: "hash",
				Run: func(args []string) error {
					receivedArgs = args
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"hash", "wallet.jelf"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "wallet.jelf" {
		t.Errorf("args = %v, want [wallet.jelf]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var exports int
	var target string

	command := &Command{
		Name: "hash",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			flagSet.IntVar(&exports, "exports", 0, "entry point count")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--exports", "2", "wallet.jelf"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if exports != 2 {
		t.Errorf("exports = %d, want 2", exports)
	}
	if target != "wallet.jelf" {
		t.Errorf("target = %q, want %q", target, "wallet.jelf")
	}
}

func TestCommand_Execute_UnknownCommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "jelf",
		Subcommands: []*Command{
			{Name: "hash", Run: func(args []string) error { return nil }},
			{Name: "inspect", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute([]string{"hsah"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "hash"`) {
		t.Errorf("error lacks suggestion: %v", err)
	}
}

func TestCommand_Execute_UnknownCommandNoCloseMatch(t *testing.T) {
	root := &Command{
		Name: "jelf",
		Subcommands: []*Command{
			{Name: "hash", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute([]string{"completely-different"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("suggestion offered for a hopeless typo: %v", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "hash",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			flagSet.Int("exports", 0, "entry point count")
			flagSet.Int("strength", 256, "digest width in bits")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--exprots", "2"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--exports") {
		t.Errorf("error lacks flag suggestion: %v", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{
		Name: "jelf",
		Subcommands: []*Command{
			{Name: "hash", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute() = %v, want subcommand-required error", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	ran := false
	root := &Command{
		Name: "jelf",
		Subcommands: []*Command{
			{Name: "hash", Run: func(args []string) error { ran = true; return nil }},
		},
	}

	if err := root.Execute([]string{"--help"}); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	if ran {
		t.Error("help flag ran a subcommand")
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "jelf",
		Description: "Loader tooling for application modules.",
		Subcommands: []*Command{
			{Name: "hash", Summary: "Compute the execution digest"},
			{Name: "inspect", Summary: "Show header and tables"},
		},
		Examples: []Example{
			{Description: "Hash a module", Command: "jelf hash wallet.jelf --exports 2"},
		},
	}

	var buf bytes.Buffer
	command.PrintHelp(&buf)
	help := buf.String()

	for _, want := range []string{
		"Loader tooling",
		"hash",
		"Compute the execution digest",
		"inspect",
		"jelf hash wallet.jelf --exports 2",
		"Run 'jelf <command> --help'",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	child := &Command{Name: "hash", Run: func(args []string) error { return nil }}
	root := &Command{Name: "jelf", Subcommands: []*Command{child}}

	if err := root.Execute([]string{"hash"}); err != nil {
		t.Fatal(err)
	}
	if got := child.fullName(); got != "jelf hash" {
		t.Errorf("fullName() = %q, want %q", got, "jelf hash")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"hash", "hash", 0},
		{"hash", "hsah", 2},
		{"inspect", "insepct", 2},
		{"hash", "", 4},
		{"verify", "veryfy", 1},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
