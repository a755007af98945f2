// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package unaligned reads and writes little-endian integers at
// arbitrary byte offsets within a buffer.
//
// The JELF format packs table entries at strides that are not multiples
// of their field widths (symbol entries are 10 bytes), so multi-byte
// fields routinely start at odd offsets. Every access here assembles
// the value byte by byte, which is safe at any offset on any
// architecture and makes the byte order explicit at the access site.
//
// All functions bounds-check the access and return
// status.InsufficientBuf when offset+width exceeds the buffer, so a
// malformed table can never turn into an out-of-range read or write.
// This package is the leaf dependency of the parser, relocator, and
// the test image builder.
package unaligned
