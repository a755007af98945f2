// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package jelf

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/jelf/lib/status"
)

// mapImage maps the file read-only. The mapping outlives the
// descriptor, so the caller may close the file immediately; release
// unmaps. A read-only mapping also hard-enforces the parser's
// never-mutates-the-image contract: a stray write faults instead of
// corrupting the source.
func mapImage(file *os.File, size int) ([]byte, func(), error) {
	if size == 0 {
		// Zero-length mmap is an EINVAL; an empty image is handled
		// (and rejected) by Parse like any other short buffer.
		return []byte{}, func() {}, nil
	}
	data, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, status.Errorf(status.Failure, "mapping module: %w", err)
	}
	release := func() {
		unix.Munmap(data)
	}
	return data, release, nil
}
