// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package status defines the closed status taxonomy shared by the JELF
// loader and its adjacent consumers.
//
// Every failure in the loader pipeline is one value of [Code], a closed
// enumeration whose names and ordering are wire-visible: [Code.String]
// renders the canonical C-style names (E_SUCCESS, E_INVALID_ADDRESS, ...)
// that provisioning tools and device firmware log and compare against.
//
// The loader itself produces only the structural subset (Success through
// UndefinedBlockType, plus InvalidStrength and UnableAllocateMem). The
// mnemonic, checksum, and network codes belong to external collaborators
// (wallet UI, provisioning transport); they live in the same enumeration
// so a single status value can propagate across subsystem boundaries
// without translation.
//
// [Code] implements error, so sentinel-style matching works directly:
//
//	if errors.Is(err, status.InvalidAddress) { ... }
//
// [Error] carries a code plus human-readable detail and an optional
// wrapped cause; [Errorf] constructs one. [CodeOf] collapses any error
// back to its code: nil maps to Success, errors with no code map to
// Failure.
package status
