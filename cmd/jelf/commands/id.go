// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/jelf/cmd/jelf/cli"
	"github.com/bureau-foundation/jelf/lib/imageid"
)

func idCommand() *cli.Command {
	var short bool
	return &cli.Command{
		Name:    "id",
		Summary: "Compute a module file's distribution identity",
		Description: `Compute the keyed BLAKE3 identity of the raw file bytes as shipped.

Unlike the execution digest, the identity covers every byte of the
file — tables, signature, compression wrapper and all — and requires
no parsing. It identifies the artifact, not the program: re-signing or
re-compressing a module changes its identity but not its digest.`,
		Usage: "jelf id <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Full identity for a registry entry",
				Command:     "jelf id wallet.jelf.gz",
			},
			{
				Description: "Short reference for logs",
				Command:     "jelf id wallet.jelf.gz --short",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("id", pflag.ContinueOnError)
			flags.BoolVar(&short, "short", false, "print the short jelf-… reference form")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("id takes exactly one module file, got %d arguments", len(args))
			}
			return runID(os.Stdout, args[0], short)
		},
	}
}

func runID(w io.Writer, path string, short bool) error {
	id, err := imageid.HashFile(path)
	if err != nil {
		return err
	}
	if short {
		_, err = fmt.Fprintln(w, imageid.FormatRef(id))
	} else {
		_, err = fmt.Fprintln(w, imageid.Format(id))
	}
	return err
}
