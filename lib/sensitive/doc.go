// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sensitive marks byte buffers as confidential so they are
// never logged or serialized by accident.
//
// The JELF header carries wallet-adjacent material (the BIP32 seed
// derivation key string), and a module digest is itself sensitive
// until it has been checked against a signature: logging it invites
// operators to trust an unverified value. [Bytes] wraps such buffers
// and redacts every incidental output path:
//
//   - fmt verbs (%s, %v, %q, %x) print "[redacted]"
//   - slog structured logging logs "[redacted]" via LogValuer
//   - encoding/json and encoding.TextMarshaler emit "[redacted]"
//
// The only way to get the raw bytes is an explicit [Bytes.Reveal]
// call, which is easy to audit with grep. [Bytes.Zero] wipes the
// underlying buffer when the material is no longer needed.
//
// This is a classification convention, not a memory-protection
// mechanism: the wrapped slice lives on the ordinary Go heap. Material
// that must survive hostile memory inspection belongs in an mlocked
// buffer, which this loader does not need.
package sensitive
