// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jelftest builds JELF images programmatically for tests.
//
// [Builder] assembles a structurally valid image from section, symbol,
// and relocation specs, computing the table layout and data offsets
// the way the converter toolchain does. Tests that need malformed
// images build a valid one and corrupt specific bytes afterwards; the
// exported header offset constants point at the fields worth
// corrupting.
//
// This package is test support only; nothing in the loader depends
// on it.
package jelftest
