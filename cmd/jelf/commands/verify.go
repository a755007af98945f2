// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/jelf/cmd/jelf/cli"
	"github.com/bureau-foundation/jelf/lib/jelf"
)

func verifyCommand() *cli.Command {
	var (
		exports  int
		basename string
	)
	return &cli.Command{
		Name:    "verify",
		Summary: "Check a module against a known digest",
		Description: `Recompute the module's execution digest and compare it to the expected
hex digest. The digest width is inferred from the expected value's
length, so a 64-character digest verifies at 256 bits and a
16-character digest at 64 bits.

Exits 0 when the digests match and 1 when they do not. Any other
failure (unreadable file, malformed module) is reported as an error.`,
		Usage: "jelf verify <file> <digest> [flags]",
		Examples: []cli.Example{
			{
				Description: "Verify against a registry digest",
				Command:     "jelf verify wallet.jelf 9f86d08...0f00a08 --exports 2",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flags.IntVar(&exports, "exports", 0, "number of exported entry points to link against")
			flags.StringVar(&basename, "basename", "", "override the module basename")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("verify takes a module file and a hex digest, got %d arguments", len(args))
			}
			matched, err := runVerify(os.Stdout, args[0], args[1], basename, exports)
			if err != nil {
				return err
			}
			if !matched {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func runVerify(w io.Writer, path, expectedHex, basename string, exports int) (bool, error) {
	expected, err := jelf.ParseHex(expectedHex)
	if err != nil {
		return false, fmt.Errorf("parsing expected digest: %w", err)
	}
	if basename == "" {
		basename = jelf.Basename(path)
	}

	var loader jelf.Loader
	actual, err := loader.HashFile(path, basename, exports, expected.Strength())
	if err != nil {
		return false, err
	}

	if !actual.Equal(expected) {
		fmt.Fprintf(w, "%s: digest mismatch\n  expected %s\n  actual   %s\n",
			path, expected.Hex(), actual.Hex())
		return false, nil
	}
	fmt.Fprintf(w, "%s: ok\n", path)
	return true, nil
}
