// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Jelf is the loader tooling CLI for JELF application modules. It
// provides subcommands for computing and verifying execution digests
// (hash, verify), examining module structure (inspect, exports), and
// producing registry artifacts (id, manifest).
package main
