// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration.
//
// Two serialization formats with a clear boundary:
//
//   - JSON for human-facing interfaces: CLI --json output and anything
//     a person reads or edits.
//   - CBOR for machine artifacts: module manifests emitted for
//     registries and provisioning pipelines, which must be byte-stable
//     so downstream systems can hash and sign them.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Same logical data always produces identical bytes — a manifest
// re-encoded from the same module file is bit-for-bit reproducible.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
