// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf

import (
	"sort"

	"github.com/bureau-foundation/jelf/lib/status"
	"github.com/bureau-foundation/jelf/lib/unaligned"
)

// Export is a resolved externally callable entry point.
type Export struct {
	// Name is the symbol's 1-based export namespace index.
	Name uint16

	// Symbol is the index of the backing symbol table entry.
	Symbol int

	// Address is the resolved offset within the module image.
	Address uint32
}

// Resolved is a module with all relocations applied and the export
// table resolved: the finalized image, ready for hashing and, outside
// this package, execution.
type Resolved struct {
	module *Module

	// Image is the finalized module image. For Resolve it is a private
	// working copy; for ResolveInPlace it aliases the caller's buffer.
	Image []byte

	// Exports are the resolved entry points in symbol table order.
	Exports []Export
}

// Resolve applies the relocation table to a private working copy of
// the image and resolves the export table. expectedExports is the
// number of entry points the caller intends to link against; any
// disagreement between it, the header's declared count, and the
// actual export-flagged symbols fails with E_END_OF_FUNCTION.
//
// The caller's image is never mutated; use ResolveInPlace to patch a
// buffer the caller owns and wants patched directly.
func (m *Module) Resolve(expectedExports int) (*Resolved, error) {
	working := make([]byte, len(m.image))
	copy(working, m.image)
	return m.resolve(working, expectedExports)
}

// ResolveInPlace is Resolve without the working copy: relocations are
// patched directly into the image the caller handed to Parse. The
// explicit name is the opt-in; nothing else in the pipeline mutates
// caller memory.
func (m *Module) ResolveInPlace(expectedExports int) (*Resolved, error) {
	return m.resolve(m.image, expectedExports)
}

func (m *Module) resolve(working []byte, expectedExports int) (*Resolved, error) {
	exports, err := m.resolveExports(expectedExports)
	if err != nil {
		return nil, err
	}
	if err := m.applyRelocations(working); err != nil {
		return nil, err
	}
	return &Resolved{module: m, Image: working, Exports: exports}, nil
}

// resolveExports collects export-flagged symbols and verifies that the
// declared, counted, and expected totals agree.
func (m *Module) resolveExports(expectedExports int) ([]Export, error) {
	var exports []Export
	for i, symbol := range m.Symbols {
		if !symbol.Exported() {
			continue
		}
		address, err := m.symbolAddress(i)
		if err != nil {
			return nil, err
		}
		exports = append(exports, Export{Name: symbol.Name, Symbol: i, Address: address})
	}

	if len(exports) != int(m.Header.ExportCount) {
		return nil, status.Errorf(status.EndOfFunction,
			"header declares %d exports, symbol table flags %d",
			m.Header.ExportCount, len(exports))
	}
	if len(exports) != expectedExports {
		return nil, status.Errorf(status.EndOfFunction,
			"caller expects %d exports, module provides %d",
			expectedExports, len(exports))
	}
	return exports, nil
}

// symbolAddress resolves symbol table entry i to an offset within the
// assembled image (or an absolute address for AbsoluteSection
// symbols). Section-relative values must stay inside their section.
func (m *Module) symbolAddress(i int) (uint32, error) {
	symbol := m.Symbols[i]
	if symbol.Section == AbsoluteSection {
		return symbol.Value, nil
	}
	section := m.Sections[symbol.Section]
	if int64(symbol.Value) > int64(section.Size) {
		return 0, status.Errorf(status.InvalidAddress,
			"symbol %d value %d outside section %d of size %d",
			i, symbol.Value, symbol.Section, section.Size)
	}
	return section.Offset + symbol.Value, nil
}

// applyRelocations walks the relocation table in file order, computes
// every fix-up, and only then commits the writes. Nothing is written
// until every entry has validated — a failing entry never leaves a
// half-patched image, which matters for ResolveInPlace, where working
// is the caller's buffer.
func (m *Module) applyRelocations(working []byte) error {
	type patch struct {
		target int64
		width  int
		value  uint32
		index  int
	}
	patches := make([]patch, 0, len(m.Relocations))

	for i, reloc := range m.Relocations {
		switch reloc.Kind {
		case RelocNone:
			continue
		case RelocExpand:
			return status.Errorf(status.NotImplemented,
				"relocation %d: expand fix-ups are not supported", i)
		}
		width := int(reloc.Width)
		if m.sectionContaining(reloc.Target, width) < 0 {
			return status.Errorf(status.InvalidAddress,
				"relocation %d targets %d (+%d), not inside any section",
				i, reloc.Target, width)
		}

		address, err := m.symbolAddress(int(reloc.Symbol))
		if err != nil {
			return err
		}

		// 32-bit wrapping arithmetic, matching the device's address
		// space. Addends may be negative.
		var value uint32
		switch reloc.Kind {
		case RelocAbsolute:
			value = address + uint32(reloc.Addend)
		case RelocRelative:
			value = address + uint32(reloc.Addend) - reloc.Target
		}

		// Narrow fields accept the value either as unsigned or as a
		// sign-extended negative (relative fix-ups routinely point
		// backwards); anything else overflows the field.
		if width < 4 {
			limit := uint32(1)<<(8*width) - 1
			signedMin := uint32(int32(-1) << (8*width - 1))
			if value > limit && value < signedMin {
				return status.Errorf(status.InvalidAddress,
					"relocation %d: value %#x overflows %d-byte field", i, value, width)
			}
		}
		patches = append(patches, patch{
			target: int64(reloc.Target),
			width:  width,
			value:  value,
			index:  i,
		})
	}

	// Overlapping targets would make the image depend on application
	// order; reject them outright.
	sort.Slice(patches, func(a, b int) bool { return patches[a].target < patches[b].target })
	for i := 1; i < len(patches); i++ {
		if patches[i].target < patches[i-1].target+int64(patches[i-1].width) {
			return status.Errorf(status.InvalidAddress,
				"relocations %d and %d patch overlapping bytes",
				patches[i-1].index, patches[i].index)
		}
	}

	for _, p := range patches {
		if err := unaligned.PutUint(working, int(p.target), p.width, uint64(p.value)); err != nil {
			return err
		}
	}
	return nil
}

// Module returns the parsed module this resolution came from.
func (r *Resolved) Module() *Module {
	return r.module
}

// EntryAddress resolves the header's entry symbol to an image offset.
func (r *Resolved) EntryAddress() (uint32, error) {
	if len(r.module.Symbols) == 0 {
		return 0, status.Errorf(status.InvalidAddress, "module has no symbols")
	}
	return r.module.symbolAddress(int(r.module.Header.EntrySymbol))
}
