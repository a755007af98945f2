// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/jelf/cmd/jelf/cli"
	"github.com/bureau-foundation/jelf/lib/codec"
	"github.com/bureau-foundation/jelf/lib/imageid"
	"github.com/bureau-foundation/jelf/lib/jelf"
)

// Manifest is the registry description of one module file. It is
// serialized with Core Deterministic Encoding, so the same file always
// produces byte-identical manifest output, which registries hash and
// sign.
type Manifest struct {
	Basename string      `json:"basename"`
	Identity imageid.ID  `json:"identity"`
	Ref      string      `json:"ref"`
	Digest   jelf.Digest `json:"digest"`
	Exports  int         `json:"exports"`
	Version  [2]uint8    `json:"version"`
	Signed   bool        `json:"signed"`
	Sections int         `json:"sections"`
}

func manifestCommand() *cli.Command {
	var (
		exports int
		output  string
	)
	return &cli.Command{
		Name:    "manifest",
		Summary: "Emit a deterministic CBOR manifest for a module",
		Description: `Build a registry manifest describing the module: its distribution
identity (keyed BLAKE3 over the raw file), its 256-bit execution
digest (BLAKE2b over the finalized image), and its table summary.

The manifest is CBOR with Core Deterministic Encoding — re-running
this command on the same file is byte-for-byte reproducible. Use
--output to write to a file instead of stdout.`,
		Usage: "jelf manifest <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Write a manifest next to the module",
				Command:     "jelf manifest wallet.jelf --exports 2 --output wallet.manifest",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("manifest", pflag.ContinueOnError)
			flags.IntVar(&exports, "exports", 0, "number of exported entry points to link against")
			flags.StringVar(&output, "output", "", "write the manifest to this file instead of stdout")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("manifest takes exactly one module file, got %d arguments", len(args))
			}
			manifest, err := buildManifest(args[0], exports)
			if err != nil {
				return err
			}
			data, err := codec.Marshal(manifest)
			if err != nil {
				return fmt.Errorf("encoding manifest: %w", err)
			}
			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
}

func buildManifest(path string, exports int) (*Manifest, error) {
	identity, err := imageid.HashFile(path)
	if err != nil {
		return nil, err
	}

	var loader jelf.Loader
	image, release, err := loader.ReadImage(path)
	if err != nil {
		return nil, err
	}
	defer release()

	basename := jelf.Basename(path)
	module, err := jelf.Parse(image, basename)
	if err != nil {
		return nil, err
	}
	resolved, err := module.Resolve(exports)
	if err != nil {
		return nil, err
	}
	digest, err := resolved.Digest(jelf.Strength256)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		Basename: basename,
		Identity: identity,
		Ref:      imageid.FormatRef(identity),
		Digest:   digest,
		Exports:  len(resolved.Exports),
		Version:  [2]uint8{module.Header.VersionMajor, module.Header.VersionMinor},
		Signed:   module.Header.SignatureOff != 0,
		Sections: len(module.Sections),
	}, nil
}
