// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/bureau-foundation/jelf/lib/status"
)

// Strength selects the digest width in bits. Exactly four widths are
// supported; anything else fails with E_INVALID_STRENGTH.
type Strength int

const (
	Strength64  Strength = 64
	Strength128 Strength = 128
	Strength256 Strength = 256
	Strength512 Strength = 512
)

// Binary digest sizes in bytes, and hex buffer sizes in chars counting
// the C NUL terminator. The values are a wire contract shared with the
// device firmware's fixed-size types.
const (
	Bin64  = 8
	Bin128 = 16
	Bin256 = 32
	Bin512 = 64

	Hex64  = 2*Bin64 + 1
	Hex128 = 2*Bin128 + 1
	Hex256 = 2*Bin256 + 1
	Hex512 = 2*Bin512 + 1
)

// Size returns the binary digest size in bytes, or 0 for an
// unsupported strength.
func (s Strength) Size() int {
	switch s {
	case Strength64, Strength128, Strength256, Strength512:
		return int(s) / 8
	}
	return 0
}

// HexSize returns the hex rendering size including the NUL terminator
// of the C contract, or 0 for an unsupported strength.
func (s Strength) HexSize() int {
	if size := s.Size(); size > 0 {
		return 2*size + 1
	}
	return 0
}

// Digest is a fixed-width module digest. The binary and hexadecimal
// forms always describe the same value; Hex renders lowercase,
// fixed-width, zero-padded.
type Digest struct {
	strength Strength
	sum      [Bin512]byte
}

// Strength reports the digest's width.
func (d Digest) Strength() Strength {
	return d.strength
}

// Bytes returns the binary digest. The slice views the digest value;
// callers must not modify it.
func (d *Digest) Bytes() []byte {
	return d.sum[:d.strength.Size()]
}

// Hex returns the lowercase hexadecimal rendering, exactly twice the
// binary size in characters.
func (d *Digest) Hex() string {
	return hex.EncodeToString(d.Bytes())
}

// WriteHex streams the hexadecimal rendering to w: the loader's output
// path is an injected sink, not a concrete destination.
func (d *Digest) WriteHex(w io.Writer) (int, error) {
	return io.WriteString(w, d.Hex())
}

// MarshalText implements encoding.TextMarshaler. Digests serialize as
// their hex rendering in CBOR and JSON manifests.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting any of
// the four hex widths.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Equal compares two digests, including their strengths.
func (d Digest) Equal(other Digest) bool {
	return d.strength == other.strength && d.sum == other.sum
}

// ParseHex decodes a hexadecimal digest rendering, inferring the
// strength from its length.
func ParseHex(s string) (Digest, error) {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, status.Errorf(status.Failure, "decoding digest hex: %w", err)
	}
	strength := Strength(8 * len(decoded))
	if strength.Size() != len(decoded) {
		return Digest{}, status.Errorf(status.InvalidStrength,
			"%d-byte digest matches no supported strength", len(decoded))
	}
	digest := Digest{strength: strength}
	copy(digest.sum[:], decoded)
	return digest, nil
}

// Digest hashes the finalized module: the header bytes followed by
// every alloc code/data/rodata section's image range, in file order.
// Table bytes and the trailing signature region are excluded, so the
// digest is stable under re-signing and re-serialization of the
// tables. Identical resolved bytes and strength always produce an
// identical digest.
func (r *Resolved) Digest(strength Strength) (Digest, error) {
	size := strength.Size()
	if size == 0 {
		return Digest{}, status.Errorf(status.InvalidStrength,
			"unsupported digest strength %d", int(strength))
	}

	hasher, err := blake2b.New(size, nil)
	if err != nil {
		return Digest{}, status.Errorf(status.Failure, "initializing digest: %w", err)
	}

	// Writes to a hash.Hash never fail. Sections are hashed in file
	// order (ascending data offset), which the parser's overlap check
	// makes unambiguous, not in table order — a permuted section table
	// over identical content bytes yields the same digest.
	hasher.Write(r.Image[:HeaderSize])
	for _, section := range r.module.sectionsByOffset() {
		hasher.Write(r.Image[section.Offset : section.Offset+section.Size])
	}

	digest := Digest{strength: strength}
	copy(digest.sum[:], hasher.Sum(nil))
	return digest, nil
}
