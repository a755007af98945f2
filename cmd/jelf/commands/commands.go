// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete jelf CLI command tree.
package commands

import (
	"fmt"

	"github.com/bureau-foundation/jelf/cmd/jelf/cli"
	"github.com/bureau-foundation/jelf/lib/version"
)

// Root builds and returns the complete jelf CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "jelf",
		Description: `jelf: loader tooling for JELF application modules.

Parse, relocate, hash, and inspect the compact executable module
format used by Jolt hardware wallets.`,
		Subcommands: []*cli.Command{
			hashCommand(),
			verifyCommand(),
			exportsCommand(),
			inspectCommand(),
			idCommand(),
			manifestCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("jelf %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Hash a module that exports two entry points",
				Command:     "jelf hash wallet.jelf --exports 2",
			},
			{
				Description: "Verify a module against a known digest",
				Command:     "jelf verify wallet.jelf 9f86d08...0f00a08 --exports 2",
			},
			{
				Description: "List a module's tables without resolving it",
				Command:     "jelf inspect wallet.jelf.gz",
			},
			{
				Description: "Emit a CBOR manifest for a registry",
				Command:     "jelf manifest wallet.jelf --exports 2 --output wallet.manifest",
			},
		},
	}
}
