// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelftest

import (
	"fmt"

	"github.com/bureau-foundation/jelf/lib/jelf"
	"github.com/bureau-foundation/jelf/lib/unaligned"
)

// Header field offsets, exported so tests can corrupt specific fields
// of a built image. These mirror the loader's internal layout.
const (
	HeaderMagicOff        = 0
	HeaderVersionMajorOff = 6
	HeaderSectionCountOff = 8
	HeaderSymbolCountOff  = 10
	HeaderRelocCountOff   = 12
	HeaderExportCountOff  = 14
	HeaderSectionTableOff = 18
	HeaderSymbolTableOff  = 22
	HeaderRelocTableOff   = 26
	HeaderSignatureOff    = 30
)

// SectionSpec describes one section to build. For NoBits sections,
// MemSize is the memory size and Data must be nil; for everything
// else the data bytes define the section size.
type SectionSpec struct {
	Kind    jelf.SectionKind
	Flags   uint8
	Info    uint16
	Data    []byte
	MemSize uint32
}

// SymbolSpec describes one symbol table entry. Section is a section
// index from AddSection, or jelf.AbsoluteSection.
type SymbolSpec struct {
	Name    uint16
	Section uint16
	Flags   uint16
	Value   uint32
}

// RelocSpec describes one relocation. The patch target is given as
// (Section, Offset) and converted to an image offset at build time,
// when the layout is known.
type RelocSpec struct {
	Section uint16
	Offset  uint32
	Symbol  uint16
	Kind    jelf.RelocKind
	Width   uint8
	Addend  int32
}

// Builder accumulates module content and assembles the image.
type Builder struct {
	VersionMajor uint8
	VersionMinor uint8
	EntrySymbol  uint16
	CoinPurpose  uint32
	CoinPath     uint32
	BIP32Key     string

	// ExportCount overrides the header's declared export count when
	// non-nil; by default the builder counts the export-flagged
	// symbols, producing a consistent image.
	ExportCount *uint16

	// Signature, when non-empty, is appended as the trailing signature
	// region and the header's signature offset is set to its start.
	Signature []byte

	sections []SectionSpec
	symbols  []SymbolSpec
	relocs   []RelocSpec
}

// New returns a Builder for a current-version module.
func New() *Builder {
	return &Builder{VersionMajor: jelf.FormatVersionMajor}
}

// AddSection appends a section and returns its table index.
func (b *Builder) AddSection(spec SectionSpec) uint16 {
	b.sections = append(b.sections, spec)
	return uint16(len(b.sections) - 1)
}

// AddSymbol appends a symbol and returns its table index.
func (b *Builder) AddSymbol(spec SymbolSpec) uint16 {
	b.symbols = append(b.symbols, spec)
	return uint16(len(b.symbols) - 1)
}

// AddReloc appends a relocation entry.
func (b *Builder) AddReloc(spec RelocSpec) {
	b.relocs = append(b.relocs, spec)
}

// Build assembles the image: header, section table, symbol table,
// relocation table, section data in add order, then the signature
// region. It panics on impossible specs (bad section index, oversized
// key) — these are test bugs, not runtime conditions.
func (b *Builder) Build() []byte {
	sectionTableOff := jelf.HeaderSize
	symbolTableOff := sectionTableOff + len(b.sections)*jelf.SectionEntrySize
	relocTableOff := symbolTableOff + len(b.symbols)*jelf.SymbolEntrySize
	dataStart := relocTableOff + len(b.relocs)*jelf.RelocEntrySize

	// Lay out section data in add order.
	dataOffsets := make([]uint32, len(b.sections))
	cursor := dataStart
	for i, section := range b.sections {
		if section.Kind == jelf.SectionNoBits {
			if len(section.Data) != 0 {
				panic("jelftest: nobits section with data")
			}
			continue
		}
		dataOffsets[i] = uint32(cursor)
		cursor += len(section.Data)
	}
	signatureOff := 0
	total := cursor
	if len(b.Signature) > 0 {
		signatureOff = cursor
		total += len(b.Signature)
	}

	image := make([]byte, total)
	b.writeHeader(image, sectionTableOff, symbolTableOff, relocTableOff, signatureOff)

	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("jelftest: %v", err))
		}
	}

	for i, section := range b.sections {
		base := sectionTableOff + i*jelf.SectionEntrySize
		size := uint32(len(section.Data))
		if section.Kind == jelf.SectionNoBits {
			size = section.MemSize
		}
		must(unaligned.PutUint32(image, base, dataOffsets[i]))
		must(unaligned.PutUint32(image, base+4, size))
		must(unaligned.PutUint(image, base+8, 1, uint64(section.Kind)))
		must(unaligned.PutUint(image, base+9, 1, uint64(section.Flags)))
		must(unaligned.PutUint16(image, base+10, section.Info))
		copy(image[dataOffsets[i]:], section.Data)
	}

	for i, symbol := range b.symbols {
		base := symbolTableOff + i*jelf.SymbolEntrySize
		must(unaligned.PutUint16(image, base, symbol.Name))
		must(unaligned.PutUint16(image, base+2, symbol.Section))
		must(unaligned.PutUint16(image, base+4, symbol.Flags))
		must(unaligned.PutUint32(image, base+6, symbol.Value))
	}

	for i, reloc := range b.relocs {
		if int(reloc.Section) >= len(b.sections) {
			panic("jelftest: relocation references unknown section")
		}
		base := relocTableOff + i*jelf.RelocEntrySize
		target := dataOffsets[reloc.Section] + reloc.Offset
		must(unaligned.PutUint32(image, base, target))
		must(unaligned.PutUint16(image, base+4, reloc.Symbol))
		must(unaligned.PutUint(image, base+6, 1, uint64(reloc.Kind)))
		must(unaligned.PutUint(image, base+7, 1, uint64(reloc.Width)))
		must(unaligned.PutUint32(image, base+8, uint32(reloc.Addend)))
	}

	copy(image[signatureOff:], b.Signature)
	return image
}

// SectionDataOffset returns the image offset section index's data will
// occupy in the built image. Useful for asserting resolved addresses.
func (b *Builder) SectionDataOffset(index uint16) uint32 {
	dataStart := jelf.HeaderSize +
		len(b.sections)*jelf.SectionEntrySize +
		len(b.symbols)*jelf.SymbolEntrySize +
		len(b.relocs)*jelf.RelocEntrySize
	cursor := uint32(dataStart)
	for i, section := range b.sections {
		if section.Kind == jelf.SectionNoBits {
			continue
		}
		if uint16(i) == index {
			return cursor
		}
		cursor += uint32(len(section.Data))
	}
	panic("jelftest: unknown or nobits section index")
}

func (b *Builder) writeHeader(image []byte, sectionTableOff, symbolTableOff, relocTableOff, signatureOff int) {
	copy(image, jelf.Magic[:])
	image[HeaderVersionMajorOff] = b.VersionMajor
	image[HeaderVersionMajorOff+1] = b.VersionMinor

	exportCount := uint16(0)
	for _, symbol := range b.symbols {
		if symbol.Flags&jelf.SymbolFlagExport != 0 {
			exportCount++
		}
	}
	if b.ExportCount != nil {
		exportCount = *b.ExportCount
	}

	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("jelftest: %v", err))
		}
	}
	must(unaligned.PutUint16(image, HeaderSectionCountOff, uint16(len(b.sections))))
	must(unaligned.PutUint16(image, HeaderSymbolCountOff, uint16(len(b.symbols))))
	must(unaligned.PutUint16(image, HeaderRelocCountOff, uint16(len(b.relocs))))
	must(unaligned.PutUint16(image, HeaderExportCountOff, exportCount))
	must(unaligned.PutUint16(image, 16, b.EntrySymbol))
	must(unaligned.PutUint32(image, HeaderSectionTableOff, uint32(sectionTableOff)))
	must(unaligned.PutUint32(image, HeaderSymbolTableOff, uint32(symbolTableOff)))
	must(unaligned.PutUint32(image, HeaderRelocTableOff, uint32(relocTableOff)))
	must(unaligned.PutUint32(image, HeaderSignatureOff, uint32(signatureOff)))
	must(unaligned.PutUint32(image, 34, b.CoinPurpose))
	must(unaligned.PutUint32(image, 38, b.CoinPath))

	if len(b.BIP32Key) > 32 {
		panic("jelftest: bip32 key longer than 32 bytes")
	}
	copy(image[42:74], b.BIP32Key)
}
