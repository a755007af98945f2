// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package jelf

import (
	"os"

	"github.com/bureau-foundation/jelf/lib/status"
)

// mapImage is the non-Linux stub; the loader falls back to a bounded
// read when it fails.
func mapImage(file *os.File, size int) ([]byte, func(), error) {
	return nil, nil, status.Errorf(status.NotImplemented, "no mmap on this platform")
}
