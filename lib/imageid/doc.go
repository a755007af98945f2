// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imageid computes distribution identities for module files.
//
// The identity is a keyed BLAKE3 hash of the raw file bytes as they
// ship — before decompression, relocation, or any other processing.
// It answers "is this the same artifact I mirrored yesterday" for
// registries and update channels, and is deliberately distinct from
// the execution digest computed by lib/jelf, which covers the
// finalized (relocated) image and excludes tables and signatures.
package imageid
