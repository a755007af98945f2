// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imageid

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// ID is a 32-byte keyed BLAKE3 digest of a module file's raw bytes.
type ID [32]byte

// imageDomainKey is the 32-byte key for BLAKE3 keyed hashing. Domain
// separation keeps module-file identities from colliding with hashes
// of the same bytes computed in other contexts. The key is the ASCII
// domain name zero-padded to 32 bytes, which keeps it readable in hex
// dumps without costing any cryptographic property.
var imageDomainKey = [32]byte{
	'j', 'o', 'l', 't', '.', 'j', 'e', 'l', 'f', '.',
	'i', 'm', 'a', 'g', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashBytes computes the identity of an in-memory module file.
func HashBytes(data []byte) ID {
	hasher := newHasher()
	hasher.Write(data)
	var id ID
	copy(id[:], hasher.Sum(nil))
	return id
}

// HashFile computes the identity of the file at path. The file is
// streamed through the hash in chunks, so memory use is constant
// regardless of file size.
func HashFile(path string) (ID, error) {
	file, err := os.Open(path)
	if err != nil {
		return ID{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := newHasher()
	if _, err := io.Copy(hasher, file); err != nil {
		return ID{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	var id ID
	copy(id[:], hasher.Sum(nil))
	return id, nil
}

// Format returns the hex-encoded string representation of an identity.
// This is the canonical format used in manifests, logs, and CLI output.
func Format(id ID) string {
	return hex.EncodeToString(id[:])
}

// Parse parses a 64-character hex string into an ID.
func Parse(hexString string) (ID, error) {
	var id ID
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return id, fmt.Errorf("parsing image identity: %w", err)
	}
	if len(decoded) != 32 {
		return id, fmt.Errorf("image identity is %d bytes, want 32", len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

// MarshalText implements encoding.TextMarshaler. Identities serialize
// as their hex form in CBOR and JSON manifests.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(Format(id)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// FormatRef returns the short reference form: the "jelf-" prefix
// followed by the first 12 hex characters of the identity.
func FormatRef(id ID) string {
	return "jelf-" + hex.EncodeToString(id[:6])
}

func newHasher() *blake3.Hasher {
	// NewKeyed only fails for wrong key length, which the fixed-size
	// array rules out.
	hasher, err := blake3.NewKeyed(imageDomainKey[:])
	if err != nil {
		panic("imageid: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}
