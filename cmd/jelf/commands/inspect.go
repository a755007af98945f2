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

func inspectCommand() *cli.Command {
	var jsonOut bool
	return &cli.Command{
		Name:    "inspect",
		Summary: "Show a module's header and tables",
		Description: `Parse the module and print its header fields, section table, symbol
table, and relocation table. Inspection never applies relocations —
the listing describes the file as shipped, not the finalized image.

The BIP32 derivation key is confidential and always shown redacted.`,
		Usage: "jelf inspect <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Inspect a gzipped module",
				Command:     "jelf inspect wallet.jelf.gz",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flags.BoolVar(&jsonOut, "json", false, "output as JSON")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("inspect takes exactly one module file, got %d arguments", len(args))
			}
			return runInspect(os.Stdout, args[0], jsonOut)
		},
	}
}

// inspectResult is the --json shape of a parsed module. The BIP32 key
// is deliberately absent.
type inspectResult struct {
	Basename     string           `json:"basename"`
	VersionMajor uint8            `json:"version_major"`
	VersionMinor uint8            `json:"version_minor"`
	EntrySymbol  uint16           `json:"entry_symbol"`
	ExportCount  uint16           `json:"export_count"`
	CoinPurpose  uint32           `json:"coin_purpose"`
	CoinPath     uint32           `json:"coin_path"`
	SignatureOff uint32           `json:"signature_off"`
	ImageSize    int              `json:"image_size"`
	Sections     []inspectSection `json:"sections"`
	Symbols      []inspectSymbol  `json:"symbols"`
	Relocations  []inspectReloc   `json:"relocations"`
}

type inspectSection struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Alloc  bool   `json:"alloc"`
	Exec   bool   `json:"exec"`
}

type inspectSymbol struct {
	Index    int    `json:"index"`
	Name     uint16 `json:"name"`
	Section  uint16 `json:"section"`
	Value    uint32 `json:"value"`
	Exported bool   `json:"exported"`
}

type inspectReloc struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Target uint32 `json:"target"`
	Symbol uint16 `json:"symbol"`
	Width  uint8  `json:"width"`
	Addend int32  `json:"addend"`
}

func runInspect(w io.Writer, path string, jsonOut bool) error {
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

	if jsonOut {
		return cli.WriteJSON(buildInspectResult(module))
	}
	return writeInspectText(w, module)
}

func buildInspectResult(module *jelf.Module) inspectResult {
	result := inspectResult{
		Basename:     module.Basename,
		VersionMajor: module.Header.VersionMajor,
		VersionMinor: module.Header.VersionMinor,
		EntrySymbol:  module.Header.EntrySymbol,
		ExportCount:  module.Header.ExportCount,
		CoinPurpose:  module.Header.CoinPurpose,
		CoinPath:     module.Header.CoinPath,
		SignatureOff: module.Header.SignatureOff,
		ImageSize:    module.ImageSize(),
	}
	for i, section := range module.Sections {
		result.Sections = append(result.Sections, inspectSection{
			Index:  i,
			Kind:   section.Kind.String(),
			Offset: section.Offset,
			Size:   section.Size,
			Alloc:  section.Alloc(),
			Exec:   section.Flags&jelf.SectionFlagExec != 0,
		})
	}
	for i, symbol := range module.Symbols {
		result.Symbols = append(result.Symbols, inspectSymbol{
			Index:    i,
			Name:     symbol.Name,
			Section:  symbol.Section,
			Value:    symbol.Value,
			Exported: symbol.Exported(),
		})
	}
	for i, reloc := range module.Relocations {
		result.Relocations = append(result.Relocations, inspectReloc{
			Index:  i,
			Kind:   reloc.Kind.String(),
			Target: reloc.Target,
			Symbol: reloc.Symbol,
			Width:  reloc.Width,
			Addend: reloc.Addend,
		})
	}
	return result
}

func writeInspectText(w io.Writer, module *jelf.Module) error {
	header := module.Header
	fmt.Fprintf(w, "module:      %s\n", module.Basename)
	fmt.Fprintf(w, "version:     %d.%d\n", header.VersionMajor, header.VersionMinor)
	fmt.Fprintf(w, "entry:       symbol %d\n", header.EntrySymbol)
	fmt.Fprintf(w, "exports:     %d\n", header.ExportCount)
	fmt.Fprintf(w, "coin:        purpose=0x%08x path=0x%08x\n", header.CoinPurpose, header.CoinPath)
	fmt.Fprintf(w, "bip32 key:   %s\n", header.BIP32Key)
	if header.SignatureOff != 0 {
		fmt.Fprintf(w, "signature:   %d bytes at offset %d\n",
			module.ImageSize()-int(header.SignatureOff), header.SignatureOff)
	} else {
		fmt.Fprintf(w, "signature:   none\n")
	}
	fmt.Fprintf(w, "image:       %d bytes\n", module.ImageSize())

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "\nSECTION\tKIND\tOFFSET\tSIZE\tFLAGS\n")
	for i, section := range module.Sections {
		flags := ""
		if section.Alloc() {
			flags += "A"
		}
		if section.Flags&jelf.SectionFlagExec != 0 {
			flags += "X"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i, section.Kind, section.Offset, section.Size, flags)
	}

	fmt.Fprintf(tw, "\nSYMBOL\tNAME\tSECTION\tVALUE\tEXPORTED\n")
	for i, symbol := range module.Symbols {
		section := fmt.Sprintf("%d", symbol.Section)
		if symbol.Section == jelf.AbsoluteSection {
			section = "abs"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t0x%08x\t%t\n", i, symbol.Name, section, symbol.Value, symbol.Exported())
	}

	if len(module.Relocations) > 0 {
		fmt.Fprintf(tw, "\nRELOC\tKIND\tTARGET\tSYMBOL\tWIDTH\tADDEND\n")
		for i, reloc := range module.Relocations {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n",
				i, reloc.Kind, reloc.Target, reloc.Symbol, reloc.Width, reloc.Addend)
		}
	}
	return tw.Flush()
}
