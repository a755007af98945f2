// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf

import (
	"fmt"

	"github.com/bureau-foundation/jelf/lib/sensitive"
)

// Magic identifies a JELF image. The leading 0x7f byte keeps the file
// from being mistaken for text, mirroring ELF.
var Magic = [6]byte{0x7f, 'J', 'E', 'L', 'F', 0}

// FormatVersionMajor is the newest major format revision this loader
// understands. Images with a larger major version fail with
// E_NOT_IMPLEMENTED; minor revisions are forward compatible.
const FormatVersionMajor = 1

// Fixed structure sizes in bytes.
const (
	HeaderSize       = 76
	SectionEntrySize = 12
	SymbolEntrySize  = 10
	RelocEntrySize   = 12
)

// bip32KeySize is the fixed width of the header's BIP32 derivation key
// field, NUL-padded.
const bip32KeySize = 32

// SectionKind classifies a section's content.
type SectionKind uint8

const (
	// SectionCode holds executable instructions.
	SectionCode SectionKind = 1
	// SectionData holds initialized writable data.
	SectionData SectionKind = 2
	// SectionROData holds initialized read-only data.
	SectionROData SectionKind = 3
	// SectionNoBits describes zero-initialized memory; it occupies no
	// bytes in the image and contributes nothing to the digest.
	SectionNoBits SectionKind = 4
)

func (k SectionKind) String() string {
	switch k {
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionROData:
		return "rodata"
	case SectionNoBits:
		return "nobits"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Section flags.
const (
	// SectionFlagAlloc marks a section that occupies device memory.
	SectionFlagAlloc = 1 << 0
	// SectionFlagExec marks a section containing executable code.
	SectionFlagExec = 1 << 1
)

// Symbol flags.
const (
	// SymbolFlagExport marks a symbol as an externally callable entry
	// point. The number of flagged symbols must match both the header's
	// declared export count and the count the caller links against.
	SymbolFlagExport = 1 << 0
)

// AbsoluteSection is the symbol section index meaning "value is an
// absolute address, not section-relative".
const AbsoluteSection = 0xffff

// RelocKind is the fix-up variant of a relocation entry.
type RelocKind uint8

const (
	// RelocNone is a no-op entry; converters emit it for relocations
	// the target architecture resolves at build time.
	RelocNone RelocKind = 0
	// RelocAbsolute stores the resolved address plus addend at the
	// target.
	RelocAbsolute RelocKind = 1
	// RelocRelative stores the displacement from the target offset to
	// the resolved address plus addend.
	RelocRelative RelocKind = 2
	// RelocExpand is carried over from the original instruction-set
	// specific converter output. It is recognized so images containing
	// it are not misparsed, but applying it is not implemented.
	RelocExpand RelocKind = 3
)

func (k RelocKind) String() string {
	switch k {
	case RelocNone:
		return "none"
	case RelocAbsolute:
		return "absolute"
	case RelocRelative:
		return "relative"
	case RelocExpand:
		return "expand"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Header is the decoded fixed-position header of a module image.
type Header struct {
	VersionMajor uint8
	VersionMinor uint8

	SectionCount    uint16
	SymbolCount     uint16
	RelocationCount uint16

	// ExportCount is the declared number of export-flagged symbols.
	// Resolution verifies it against the actual flagged entries and
	// the caller's expectation.
	ExportCount uint16

	// EntrySymbol is the symbol table index of the module entry point.
	EntrySymbol uint16

	SectionTableOff uint32
	SymbolTableOff  uint32
	RelocTableOff   uint32

	// SignatureOff is the image offset where the trailing signature
	// region begins; it is also the exclusive end of hashed content.
	// Zero means the image is unsigned and hashed to its end.
	SignatureOff uint32

	// Wallet derivation fields carried from the converter. The loader
	// hashes them as part of the header but never interprets them.
	CoinPurpose uint32
	CoinPath    uint32

	// BIP32Key is the derivation seed key string, classified so it
	// cannot leak into logs or serialized output.
	BIP32Key sensitive.Bytes
}

// Section is a decoded section table entry. Offset and Size describe a
// view into the module image; for SectionNoBits, Size is the memory
// size and no image bytes are occupied.
type Section struct {
	Offset uint32
	Size   uint32
	Kind   SectionKind
	Flags  uint8
	Info   uint16
}

// Alloc reports whether the section occupies device memory.
func (s Section) Alloc() bool {
	return s.Flags&SectionFlagAlloc != 0
}

// hashed reports whether the section's image bytes are covered by the
// module digest.
func (s Section) hashed() bool {
	return s.Alloc() && s.Kind != SectionNoBits && s.Size > 0
}

// Symbol is a decoded symbol table entry.
type Symbol struct {
	// Name is a 1-based index into the export namespace shared with
	// the device OS; zero means the symbol is internal and unnamed.
	Name uint16

	// Section is the owning section table index, or AbsoluteSection
	// when Value is an absolute address.
	Section uint16

	Flags uint16

	// Value is the symbol's offset within its section, or the absolute
	// address when Section is AbsoluteSection.
	Value uint32
}

// Exported reports whether the symbol is an externally callable entry
// point.
func (s Symbol) Exported() bool {
	return s.Flags&SymbolFlagExport != 0
}

// Relocation is a decoded relocation table entry.
type Relocation struct {
	// Target is the image offset of the bytes to patch. It must fall
	// inside a single alloc, non-nobits section.
	Target uint32

	// Symbol is the symbol table index the fix-up resolves against.
	Symbol uint16

	Kind RelocKind

	// Width is the patched field width in bytes: 1, 2, 4, or 8.
	// Zero is permitted for RelocNone and RelocExpand entries.
	Width uint8

	Addend int32
}
