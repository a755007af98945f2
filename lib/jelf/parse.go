// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf

import (
	"bytes"
	"sort"

	"github.com/bureau-foundation/jelf/lib/sensitive"
	"github.com/bureau-foundation/jelf/lib/status"
	"github.com/bureau-foundation/jelf/lib/unaligned"
)

// Module is a parsed, validated module image. All table slices are
// decoded bookkeeping (O(entry count)); section content remains a view
// into the caller's image, which the Module never mutates and never
// retains beyond the pipeline invocation.
type Module struct {
	Basename    string
	Header      Header
	Sections    []Section
	Symbols     []Symbol
	Relocations []Relocation

	image []byte
}

// Header field offsets. The layout is fixed and little-endian; see the
// package documentation for the full map.
const (
	offMagic        = 0
	offVersionMajor = 6
	offVersionMinor = 7
	offSectionCount = 8
	offSymbolCount  = 10
	offRelocCount   = 12
	offExportCount  = 14
	offEntrySymbol  = 16
	offSectionTable = 18
	offSymbolTable  = 22
	offRelocTable   = 26
	offSignature    = 30
	offCoinPurpose  = 34
	offCoinPath     = 38
	offBIP32Key     = 42
)

// Parse validates image as a JELF module and returns structured views
// into it. The image is read-only to the parser and every later stage
// except Module.ResolveInPlace. basename is the caller's display and
// namespacing identifier; it is carried, not interpreted.
func Parse(image []byte, basename string) (*Module, error) {
	if len(image) < HeaderSize {
		return nil, status.Errorf(status.InsufficientBuf,
			"image is %d bytes, header alone needs %d", len(image), HeaderSize)
	}
	if !bytes.Equal(image[offMagic:offMagic+len(Magic)], Magic[:]) {
		return nil, status.Errorf(status.UndefinedBlockType,
			"bad format identifier % x", image[:len(Magic)])
	}

	header, err := parseHeader(image)
	if err != nil {
		return nil, err
	}
	module := &Module{
		Basename: basename,
		Header:   header,
		image:    image,
	}

	hashEnd := module.hashEnd()

	if err := checkTable(image, "section table", header.SectionTableOff,
		int(header.SectionCount), SectionEntrySize, hashEnd); err != nil {
		return nil, err
	}
	if err := checkTable(image, "symbol table", header.SymbolTableOff,
		int(header.SymbolCount), SymbolEntrySize, hashEnd); err != nil {
		return nil, err
	}
	if err := checkTable(image, "relocation table", header.RelocTableOff,
		int(header.RelocationCount), RelocEntrySize, hashEnd); err != nil {
		return nil, err
	}

	if err := module.parseSections(); err != nil {
		return nil, err
	}
	if err := module.parseSymbols(); err != nil {
		return nil, err
	}
	if err := module.parseRelocations(); err != nil {
		return nil, err
	}
	return module, nil
}

func parseHeader(image []byte) (Header, error) {
	// Offsets below are all inside the already length-checked header,
	// so the accessor cannot fail; errors are still propagated to keep
	// the no-panic guarantee mechanical rather than reasoned.
	var header Header
	var err error
	read16 := func(off int) uint16 {
		var v uint16
		if err == nil {
			v, err = unaligned.Uint16(image, off)
		}
		return v
	}
	read32 := func(off int) uint32 {
		var v uint32
		if err == nil {
			v, err = unaligned.Uint32(image, off)
		}
		return v
	}

	header.VersionMajor = image[offVersionMajor]
	header.VersionMinor = image[offVersionMinor]
	header.SectionCount = read16(offSectionCount)
	header.SymbolCount = read16(offSymbolCount)
	header.RelocationCount = read16(offRelocCount)
	header.ExportCount = read16(offExportCount)
	header.EntrySymbol = read16(offEntrySymbol)
	header.SectionTableOff = read32(offSectionTable)
	header.SymbolTableOff = read32(offSymbolTable)
	header.RelocTableOff = read32(offRelocTable)
	header.SignatureOff = read32(offSignature)
	header.CoinPurpose = read32(offCoinPurpose)
	header.CoinPath = read32(offCoinPath)
	if err != nil {
		return Header{}, err
	}

	key := make([]byte, bip32KeySize)
	copy(key, image[offBIP32Key:offBIP32Key+bip32KeySize])
	header.BIP32Key = sensitive.Wrap(key)

	if header.VersionMajor > FormatVersionMajor {
		return Header{}, status.Errorf(status.NotImplemented,
			"format version %d.%d is newer than supported major %d",
			header.VersionMajor, header.VersionMinor, FormatVersionMajor)
	}
	if header.SignatureOff != 0 {
		if int64(header.SignatureOff) < HeaderSize || int64(header.SignatureOff) > int64(len(image)) {
			return Header{}, status.Errorf(status.InvalidAddress,
				"signature region at %d outside image of %d bytes",
				header.SignatureOff, len(image))
		}
	}
	return header, nil
}

// hashEnd is the exclusive end of hashed content: the signature region
// start, or the image end for unsigned modules.
func (m *Module) hashEnd() int {
	if m.Header.SignatureOff != 0 {
		return int(m.Header.SignatureOff)
	}
	return len(m.image)
}

// checkTable validates that a declared table lies fully inside the
// hashed region of the image. An offset pointing outside the image (or
// into the header or signature trailer) is an addressing failure; an
// in-range offset whose entries run past the end is a truncation.
func checkTable(image []byte, name string, offset uint32, count, entrySize, hashEnd int) error {
	if count == 0 {
		return nil
	}
	if int64(offset) < HeaderSize || int64(offset) >= int64(hashEnd) {
		return status.Errorf(status.InvalidAddress,
			"%s offset %d outside content region [%d, %d)", name, offset, HeaderSize, hashEnd)
	}
	need := int64(count) * int64(entrySize)
	if int64(offset)+need > int64(hashEnd) {
		return status.Errorf(status.InsufficientBuf,
			"%s: %d entries need %d bytes at offset %d, content region ends at %d",
			name, count, need, offset, hashEnd)
	}
	return nil
}

func (m *Module) parseSections() error {
	count := int(m.Header.SectionCount)
	m.Sections = make([]Section, count)
	hashEnd := int64(m.hashEnd())

	for i := 0; i < count; i++ {
		base := int(m.Header.SectionTableOff) + i*SectionEntrySize
		offset, err := unaligned.Uint32(m.image, base)
		if err != nil {
			return err
		}
		size, err := unaligned.Uint32(m.image, base+4)
		if err != nil {
			return err
		}
		kind, err := unaligned.Uint8(m.image, base+8)
		if err != nil {
			return err
		}
		flags, err := unaligned.Uint8(m.image, base+9)
		if err != nil {
			return err
		}
		info, err := unaligned.Uint16(m.image, base+10)
		if err != nil {
			return err
		}

		section := Section{
			Offset: offset,
			Size:   size,
			Kind:   SectionKind(kind),
			Flags:  flags,
			Info:   info,
		}
		switch section.Kind {
		case SectionCode, SectionData, SectionROData, SectionNoBits:
		default:
			return status.Errorf(status.UndefinedBlockType,
				"section %d has unknown kind %d", i, kind)
		}

		// NoBits sections describe memory only; their offset/size never
		// touch the image. Everything else must fit inside the hashed
		// content region so a section can never alias the signature.
		if section.Kind != SectionNoBits && size > 0 {
			if int64(offset) < HeaderSize || int64(offset) >= hashEnd {
				return status.Errorf(status.InvalidAddress,
					"section %d data at %d outside content region", i, offset)
			}
			if int64(offset)+int64(size) > hashEnd {
				return status.Errorf(status.InsufficientBuf,
					"section %d: %d bytes at offset %d run past content end %d",
					i, size, offset, hashEnd)
			}
		}
		m.Sections[i] = section
	}
	return m.checkSectionOverlap()
}

// checkSectionOverlap rejects images whose section data ranges overlap
// each other. Overlap would make the hashing boundary ambiguous (the
// same bytes hashed under two kinds) and lets one relocation silently
// corrupt another section.
func (m *Module) checkSectionOverlap() error {
	type span struct {
		start, end int64
		index      int
	}
	spans := make([]span, 0, len(m.Sections))
	for i, section := range m.Sections {
		if section.Kind == SectionNoBits || section.Size == 0 {
			continue
		}
		spans = append(spans, span{
			start: int64(section.Offset),
			end:   int64(section.Offset) + int64(section.Size),
			index: i,
		})
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return status.Errorf(status.InvalidAddress,
				"sections %d and %d overlap", spans[i-1].index, spans[i].index)
		}
	}
	return nil
}

func (m *Module) parseSymbols() error {
	count := int(m.Header.SymbolCount)
	m.Symbols = make([]Symbol, count)

	for i := 0; i < count; i++ {
		base := int(m.Header.SymbolTableOff) + i*SymbolEntrySize
		name, err := unaligned.Uint16(m.image, base)
		if err != nil {
			return err
		}
		section, err := unaligned.Uint16(m.image, base+2)
		if err != nil {
			return err
		}
		flags, err := unaligned.Uint16(m.image, base+4)
		if err != nil {
			return err
		}
		value, err := unaligned.Uint32(m.image, base+6)
		if err != nil {
			return err
		}

		if section != AbsoluteSection && int(section) >= len(m.Sections) {
			return status.Errorf(status.InvalidAddress,
				"symbol %d references section %d of %d", i, section, len(m.Sections))
		}
		m.Symbols[i] = Symbol{Name: name, Section: section, Flags: flags, Value: value}
	}

	if count > 0 && int(m.Header.EntrySymbol) >= count {
		return status.Errorf(status.InvalidAddress,
			"entry symbol %d outside symbol table of %d", m.Header.EntrySymbol, count)
	}
	return nil
}

func (m *Module) parseRelocations() error {
	count := int(m.Header.RelocationCount)
	m.Relocations = make([]Relocation, count)

	for i := 0; i < count; i++ {
		base := int(m.Header.RelocTableOff) + i*RelocEntrySize
		target, err := unaligned.Uint32(m.image, base)
		if err != nil {
			return err
		}
		symbol, err := unaligned.Uint16(m.image, base+4)
		if err != nil {
			return err
		}
		kind, err := unaligned.Uint8(m.image, base+6)
		if err != nil {
			return err
		}
		width, err := unaligned.Uint8(m.image, base+7)
		if err != nil {
			return err
		}
		addend, err := unaligned.Uint32(m.image, base+8)
		if err != nil {
			return err
		}

		reloc := Relocation{
			Target: target,
			Symbol: symbol,
			Kind:   RelocKind(kind),
			Width:  width,
			Addend: int32(addend),
		}
		switch reloc.Kind {
		case RelocNone, RelocAbsolute, RelocRelative, RelocExpand:
		default:
			return status.Errorf(status.UndefinedBlockType,
				"relocation %d has unknown kind %d", i, kind)
		}
		switch reloc.Width {
		case 1, 2, 4, 8:
		case 0:
			if reloc.Kind == RelocAbsolute || reloc.Kind == RelocRelative {
				return status.Errorf(status.UndefinedBlockType,
					"relocation %d: %s fix-up with zero width", i, reloc.Kind)
			}
		default:
			return status.Errorf(status.UndefinedBlockType,
				"relocation %d has unsupported width %d", i, reloc.Width)
		}
		if int(symbol) >= len(m.Symbols) {
			return status.Errorf(status.InvalidAddress,
				"relocation %d references symbol %d of %d", i, symbol, len(m.Symbols))
		}
		m.Relocations[i] = reloc
	}
	return nil
}

// SectionData returns a read-only view of section i's image bytes.
// NoBits sections yield nil.
func (m *Module) SectionData(i int) []byte {
	if i < 0 || i >= len(m.Sections) {
		return nil
	}
	section := m.Sections[i]
	if section.Kind == SectionNoBits || section.Size == 0 {
		return nil
	}
	return m.image[section.Offset : section.Offset+section.Size]
}

// ImageSize reports the total byte length of the underlying image.
func (m *Module) ImageSize() int {
	return len(m.image)
}

// sectionsByOffset returns the digest-covered sections ordered by
// their data offset in the image.
func (m *Module) sectionsByOffset() []Section {
	sections := make([]Section, 0, len(m.Sections))
	for _, section := range m.Sections {
		if section.hashed() {
			sections = append(sections, section)
		}
	}
	sort.Slice(sections, func(a, b int) bool {
		return sections[a].Offset < sections[b].Offset
	})
	return sections
}

// sectionContaining returns the index of the alloc, non-nobits section
// whose image range fully contains [offset, offset+width), or -1.
func (m *Module) sectionContaining(offset uint32, width int) int {
	for i, section := range m.Sections {
		if section.Kind == SectionNoBits || !section.Alloc() {
			continue
		}
		start := int64(section.Offset)
		end := start + int64(section.Size)
		if int64(offset) >= start && int64(offset)+int64(width) <= end {
			return i
		}
	}
	return -1
}
