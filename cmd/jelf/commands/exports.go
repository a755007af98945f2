// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/jelf/cmd/jelf/cli"
	"github.com/bureau-foundation/jelf/lib/jelf"
)

func exportsCommand() *cli.Command {
	var (
		exports int
		jsonOut bool
	)
	return &cli.Command{
		Name:    "exports",
		Summary: "List a module's resolved entry points",
		Description: `Resolve the module and list every exported symbol with its export
namespace index and its address in the finalized image.`,
		Usage: "jelf exports <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "List entry points of a two-export module",
				Command:     "jelf exports wallet.jelf --exports 2",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("exports", pflag.ContinueOnError)
			flags.IntVar(&exports, "exports", 0, "number of exported entry points to link against")
			flags.BoolVar(&jsonOut, "json", false, "output as JSON")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exports takes exactly one module file, got %d arguments", len(args))
			}
			return runExports(os.Stdout, args[0], exports, jsonOut)
		},
	}
}

// exportEntry is the --json shape of one resolved entry point.
type exportEntry struct {
	Name    uint16 `json:"name"`
	Symbol  int    `json:"symbol"`
	Address uint32 `json:"address"`
}

func runExports(w io.Writer, path string, exports int, jsonOut bool) error {
	var loader jelf.Loader
	image, release, err := loader.ReadImage(path)
	if err != nil {
		return err
	}
	defer release()

	module, err := jelf.Parse(image, jelf.Basename(path))
	if err != nil {
		return err
	}
	resolved, err := module.Resolve(exports)
	if err != nil {
		return err
	}

	if jsonOut {
		entries := make([]exportEntry, 0, len(resolved.Exports))
		for _, export := range resolved.Exports {
			entries = append(entries, exportEntry{
				Name:    export.Name,
				Symbol:  export.Symbol,
				Address: export.Address,
			})
		}
		return cli.WriteJSON(entries)
	}

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSYMBOL\tADDRESS")
	for _, export := range resolved.Exports {
		fmt.Fprintf(tw, "%d\t%d\t0x%08x\n", export.Name, export.Symbol, export.Address)
	}
	return tw.Flush()
}
