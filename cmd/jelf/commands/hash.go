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

func hashCommand() *cli.Command {
	var (
		exports  int
		basename string
		strength int
		verbose  bool
		jsonOut  bool
	)
	return &cli.Command{
		Name:    "hash",
		Summary: "Compute the execution digest of a module",
		Description: `Parse the module, apply its relocation table, and compute the BLAKE2b
digest of the finalized image.

The digest covers the header and every allocated section's content; it
excludes the tables and the trailing signature region, so it is stable
under re-signing. --exports must match the number of entry points the
module actually flags — a mismatch is a linking error, not a warning.`,
		Usage: "jelf hash <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Standard 256-bit digest",
				Command:     "jelf hash wallet.jelf --exports 2",
			},
			{
				Description: "Short digest for display",
				Command:     "jelf hash wallet.jelf --exports 2 --strength 64",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			flags.IntVar(&exports, "exports", 0, "number of exported entry points to link against")
			flags.StringVar(&basename, "basename", "", "override the module basename (default: derived from the file name)")
			flags.IntVar(&strength, "strength", 256, "digest width in bits (64, 128, 256, 512)")
			flags.BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
			flags.BoolVar(&jsonOut, "json", false, "output as JSON")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("hash takes exactly one module file, got %d arguments", len(args))
			}
			return runHash(os.Stdout, args[0], basename, exports, strength, verbose, jsonOut)
		},
	}
}

// hashResult is the --json shape of a hash invocation.
type hashResult struct {
	Path     string      `json:"path"`
	Basename string      `json:"basename"`
	Exports  int         `json:"exports"`
	Strength int         `json:"strength"`
	Digest   jelf.Digest `json:"digest"`
}

func runHash(w io.Writer, path, basename string, exports, strengthBits int, verbose, jsonOut bool) error {
	if basename == "" {
		basename = jelf.Basename(path)
	}
	loader := jelf.Loader{}
	if verbose {
		loader.Logger = cli.NewCommandLogger(true)
	}

	digest, err := loader.HashFile(path, basename, exports, jelf.Strength(strengthBits))
	if err != nil {
		return err
	}

	if jsonOut {
		return cli.WriteJSON(hashResult{
			Path:     path,
			Basename: basename,
			Exports:  exports,
			Strength: strengthBits,
			Digest:   digest,
		})
	}
	_, err = fmt.Fprintf(w, "%s  %s\n", digest.Hex(), basename)
	return err
}
