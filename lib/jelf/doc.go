// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jelf loads JELF modules: compact, ELF-inspired relocatable
// executables for constrained devices.
//
// A JELF file is a little-endian image with a fixed 76-byte header,
// three flat tables (sections, symbols, relocations), the section data,
// and an optional trailing signature region:
//
//	+------------------+
//	| Header (76 B)    |
//	+------------------+
//	| Section table    |
//	+------------------+
//	| Symbol table     |
//	+------------------+
//	| Relocation table |
//	+------------------+
//	| Section data ... |
//	+------------------+
//	| Signature (opt)  |
//	+------------------+
//
// The pipeline is three explicit stages, each producing the input of
// the next:
//
//	image := os.ReadFile(...)
//	module, err := jelf.Parse(image, "demo")        // validate, view
//	resolved, err := module.Resolve(3)              // relocate, export
//	digest, err := resolved.Digest(jelf.Strength256) // hash
//
// [Parse] validates structure and produces zero-copy views; it never
// mutates the image. [Module.Resolve] applies relocations to a private
// working copy and resolves the export table ([Module.ResolveInPlace]
// patches the caller's buffer for callers that own it). The digest
// covers the header and the alloc section data in file order, stopping
// at the signature region, so re-signing a module never changes its
// digest.
//
// [Loader] wraps the stages behind a file path entry point with
// transparent gzip decompression and, on Linux, a read-only mmap fast
// path. [LoaderHash] is the classic one-call form.
//
// Every failure is a status code from lib/status; malformed input is
// always a reported error, never an out-of-bounds access. Invocations
// share no mutable state: concurrent loads of different images need no
// synchronization, and concurrent loads of the same image are safe as
// long as nothing mutates it (ResolveInPlace does).
package jelf
