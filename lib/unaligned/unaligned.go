// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unaligned

import (
	"github.com/bureau-foundation/jelf/lib/status"
)

// check validates that [offset, offset+width) lies inside buf. The
// arithmetic is done in int on values already known non-negative, so
// it cannot overflow for any real slice length.
func check(buf []byte, offset int, width int) error {
	if offset < 0 {
		return status.Errorf(status.InvalidAddress, "negative offset %d", offset)
	}
	if offset+width > len(buf) {
		return status.Errorf(status.InsufficientBuf,
			"%d-byte access at offset %d exceeds %d-byte buffer", width, offset, len(buf))
	}
	return nil
}

// Uint reads a little-endian unsigned integer of the given width
// (1, 2, 4, or 8 bytes) at offset.
func Uint(buf []byte, offset int, width int) (uint64, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return 0, status.Errorf(status.Failure, "unsupported access width %d", width)
	}
	if err := check(buf, offset, width); err != nil {
		return 0, err
	}
	var value uint64
	for i := width - 1; i >= 0; i-- {
		value = value<<8 | uint64(buf[offset+i])
	}
	return value, nil
}

// PutUint writes a little-endian unsigned integer of the given width
// (1, 2, 4, or 8 bytes) at offset. Values wider than the field are
// truncated to the field width, matching the behavior of a C store
// through a narrower pointer.
func PutUint(buf []byte, offset int, width int, value uint64) error {
	switch width {
	case 1, 2, 4, 8:
	default:
		return status.Errorf(status.Failure, "unsupported access width %d", width)
	}
	if err := check(buf, offset, width); err != nil {
		return err
	}
	for i := 0; i < width; i++ {
		buf[offset+i] = byte(value)
		value >>= 8
	}
	return nil
}

// Uint8 reads a single byte at offset.
func Uint8(buf []byte, offset int) (uint8, error) {
	value, err := Uint(buf, offset, 1)
	return uint8(value), err
}

// Uint16 reads a little-endian 16-bit value at offset.
func Uint16(buf []byte, offset int) (uint16, error) {
	value, err := Uint(buf, offset, 2)
	return uint16(value), err
}

// Uint32 reads a little-endian 32-bit value at offset.
func Uint32(buf []byte, offset int) (uint32, error) {
	value, err := Uint(buf, offset, 4)
	return uint32(value), err
}

// Uint64 reads a little-endian 64-bit value at offset.
func Uint64(buf []byte, offset int) (uint64, error) {
	return Uint(buf, offset, 8)
}

// PutUint16 writes a little-endian 16-bit value at offset.
func PutUint16(buf []byte, offset int, value uint16) error {
	return PutUint(buf, offset, 2, uint64(value))
}

// PutUint32 writes a little-endian 32-bit value at offset.
func PutUint32(buf []byte, offset int, value uint32) error {
	return PutUint(buf, offset, 4, uint64(value))
}

// PutUint64 writes a little-endian 64-bit value at offset.
func PutUint64(buf []byte, offset int, value uint64) error {
	return PutUint(buf, offset, 8, value)
}
