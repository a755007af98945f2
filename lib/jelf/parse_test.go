// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/jelf/lib/jelf"
	"github.com/bureau-foundation/jelf/lib/jelf/jelftest"
	"github.com/bureau-foundation/jelf/lib/status"
	"github.com/bureau-foundation/jelf/lib/unaligned"
)

// twoExportModule builds a small well-formed module: one code section,
// one data section, a nobits section, two exported symbols and one
// internal one.
func twoExportModule() *jelftest.Builder {
	builder := jelftest.New()
	code := builder.AddSection(jelftest.SectionSpec{
		Kind:  jelf.SectionCode,
		Flags: jelf.SectionFlagAlloc | jelf.SectionFlagExec,
		Data:  []byte{0x36, 0x41, 0x00, 0x81, 0xfb, 0xff, 0xe0, 0x08, 0x00},
	})
	data := builder.AddSection(jelftest.SectionSpec{
		Kind:  jelf.SectionData,
		Flags: jelf.SectionFlagAlloc,
		Data:  []byte("jolt-data"),
	})
	builder.AddSection(jelftest.SectionSpec{
		Kind:    jelf.SectionNoBits,
		Flags:   jelf.SectionFlagAlloc,
		MemSize: 128,
	})
	builder.AddSymbol(jelftest.SymbolSpec{
		Name: 1, Section: code, Flags: jelf.SymbolFlagExport, Value: 0,
	})
	builder.AddSymbol(jelftest.SymbolSpec{
		Name: 2, Section: data, Flags: jelf.SymbolFlagExport, Value: 4,
	})
	builder.AddSymbol(jelftest.SymbolSpec{
		Name: 0, Section: code, Value: 6,
	})
	return builder
}

func TestParseWellFormed(t *testing.T) {
	builder := twoExportModule()
	builder.VersionMinor = 3
	builder.CoinPurpose = 0x8000002c
	builder.CoinPath = 0x800000a5
	builder.BIP32Key = "bitcoin_seed"
	image := builder.Build()

	module, err := jelf.Parse(image, "demo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if module.Basename != "demo" {
		t.Errorf("Basename = %q", module.Basename)
	}
	header := module.Header
	if header.VersionMajor != jelf.FormatVersionMajor || header.VersionMinor != 3 {
		t.Errorf("version = %d.%d", header.VersionMajor, header.VersionMinor)
	}
	if header.SectionCount != 3 || header.SymbolCount != 3 || header.ExportCount != 2 {
		t.Errorf("counts = %d/%d/%d", header.SectionCount, header.SymbolCount, header.ExportCount)
	}
	if header.CoinPurpose != 0x8000002c || header.CoinPath != 0x800000a5 {
		t.Errorf("coin fields = %#x/%#x", header.CoinPurpose, header.CoinPath)
	}
	if string(bytes.TrimRight(header.BIP32Key.Reveal(), "\x00")) != "bitcoin_seed" {
		t.Error("bip32 key did not round-trip")
	}

	if len(module.Sections) != 3 {
		t.Fatalf("Sections = %d", len(module.Sections))
	}
	if module.Sections[0].Kind != jelf.SectionCode || module.Sections[1].Kind != jelf.SectionData {
		t.Errorf("section kinds = %v, %v", module.Sections[0].Kind, module.Sections[1].Kind)
	}
	if module.Sections[2].Kind != jelf.SectionNoBits || module.Sections[2].Size != 128 {
		t.Errorf("nobits section = %+v", module.Sections[2])
	}
}

func TestParseSectionDataIsView(t *testing.T) {
	image := twoExportModule().Build()
	module, err := jelf.Parse(image, "demo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	view := module.SectionData(1)
	if string(view) != "jolt-data" {
		t.Fatalf("SectionData = %q", view)
	}
	// The view aliases the caller's image, not a copy.
	image[module.Sections[1].Offset] = 'J'
	if view[0] != 'J' {
		t.Error("SectionData returned a copy, want a view")
	}
	if module.SectionData(2) != nil {
		t.Error("nobits section should have no data view")
	}
}

func TestParseEmptyImage(t *testing.T) {
	if _, err := jelf.Parse(nil, "x"); !errors.Is(err, status.InsufficientBuf) {
		t.Errorf("empty image: got %v, want E_INSUFFICIENT_BUF", err)
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	image := twoExportModule().Build()
	if _, err := jelf.Parse(image[:jelf.HeaderSize-1], "x"); !errors.Is(err, status.InsufficientBuf) {
		t.Errorf("truncated header: got %v, want E_INSUFFICIENT_BUF", err)
	}
}

func TestParseBadMagic(t *testing.T) {
	image := twoExportModule().Build()
	image[1] = 'E' // "\x7fEELF"
	if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.UndefinedBlockType) {
		t.Errorf("bad magic: got %v, want E_UNDEFINED_BLOCK_TYPE", err)
	}
}

func TestParseFutureVersion(t *testing.T) {
	builder := twoExportModule()
	builder.VersionMajor = jelf.FormatVersionMajor + 1
	if _, err := jelf.Parse(builder.Build(), "x"); !errors.Is(err, status.NotImplemented) {
		t.Errorf("future version: got %v, want E_NOT_IMPLEMENTED", err)
	}
}

func TestParseTableOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		off  int
	}{
		{"section table", jelftest.HeaderSectionTableOff},
		{"symbol table", jelftest.HeaderSymbolTableOff},
		{"relocation table", jelftest.HeaderRelocTableOff},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			builder := twoExportModule()
			builder.AddReloc(jelftest.RelocSpec{
				Section: 0, Offset: 0, Symbol: 0,
				Kind: jelf.RelocAbsolute, Width: 4,
			})
			image := builder.Build()
			if err := unaligned.PutUint32(image, test.off, uint32(len(image)+100)); err != nil {
				t.Fatal(err)
			}
			if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.InvalidAddress) {
				t.Errorf("got %v, want E_INVALID_ADDRESS", err)
			}
		})
	}
}

func TestParseTruncatedTable(t *testing.T) {
	// Inflate the declared symbol count so the table runs past the
	// end of the content region.
	image := twoExportModule().Build()
	if err := unaligned.PutUint16(image, jelftest.HeaderSymbolCountOff, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.InsufficientBuf) {
		t.Errorf("truncated table: got %v, want E_INSUFFICIENT_BUF", err)
	}
}

func TestParseSectionPastEnd(t *testing.T) {
	image := twoExportModule().Build()
	module, err := jelf.Parse(image, "x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Grow section 0's declared size past the image end.
	sectionEntry := int(module.Header.SectionTableOff)
	if err := unaligned.PutUint32(image, sectionEntry+4, uint32(len(image))); err != nil {
		t.Fatal(err)
	}
	_, err = jelf.Parse(image, "x")
	if !errors.Is(err, status.InsufficientBuf) && !errors.Is(err, status.InvalidAddress) {
		t.Errorf("oversized section: got %v", err)
	}
}

func TestParseUnknownSectionKind(t *testing.T) {
	image := twoExportModule().Build()
	module, err := jelf.Parse(image, "x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sectionEntry := int(module.Header.SectionTableOff)
	image[sectionEntry+8] = 99
	if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.UndefinedBlockType) {
		t.Errorf("unknown kind: got %v, want E_UNDEFINED_BLOCK_TYPE", err)
	}
}

func TestParseOverlappingSections(t *testing.T) {
	image := twoExportModule().Build()
	module, err := jelf.Parse(image, "x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Point section 1 at section 0's data.
	sectionEntry := int(module.Header.SectionTableOff) + jelf.SectionEntrySize
	if err := unaligned.PutUint32(image, sectionEntry, module.Sections[0].Offset); err != nil {
		t.Fatal(err)
	}
	if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.InvalidAddress) {
		t.Errorf("overlapping sections: got %v, want E_INVALID_ADDRESS", err)
	}
}

func TestParseSymbolBadSection(t *testing.T) {
	image := twoExportModule().Build()
	module, err := jelf.Parse(image, "x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	symbolEntry := int(module.Header.SymbolTableOff)
	if err := unaligned.PutUint16(image, symbolEntry+2, 57); err != nil {
		t.Fatal(err)
	}
	if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.InvalidAddress) {
		t.Errorf("bad symbol section: got %v, want E_INVALID_ADDRESS", err)
	}
}

func TestParseRelocBadSymbol(t *testing.T) {
	builder := twoExportModule()
	builder.AddReloc(jelftest.RelocSpec{
		Section: 0, Offset: 2, Symbol: 40,
		Kind: jelf.RelocAbsolute, Width: 4,
	})
	if _, err := jelf.Parse(builder.Build(), "x"); !errors.Is(err, status.InvalidAddress) {
		t.Errorf("bad reloc symbol: got %v, want E_INVALID_ADDRESS", err)
	}
}

func TestParseRelocUnknownKind(t *testing.T) {
	builder := twoExportModule()
	builder.AddReloc(jelftest.RelocSpec{
		Section: 0, Offset: 0, Symbol: 0,
		Kind: jelf.RelocKind(9), Width: 4,
	})
	if _, err := jelf.Parse(builder.Build(), "x"); !errors.Is(err, status.UndefinedBlockType) {
		t.Errorf("unknown reloc kind: got %v, want E_UNDEFINED_BLOCK_TYPE", err)
	}
}

func TestParseRelocBadWidth(t *testing.T) {
	builder := twoExportModule()
	builder.AddReloc(jelftest.RelocSpec{
		Section: 0, Offset: 0, Symbol: 0,
		Kind: jelf.RelocAbsolute, Width: 3,
	})
	if _, err := jelf.Parse(builder.Build(), "x"); !errors.Is(err, status.UndefinedBlockType) {
		t.Errorf("bad reloc width: got %v, want E_UNDEFINED_BLOCK_TYPE", err)
	}
}

func TestParseSignatureRegion(t *testing.T) {
	builder := twoExportModule()
	builder.Signature = bytes.Repeat([]byte{0xAA}, 64)
	image := builder.Build()

	module, err := jelf.Parse(image, "x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if int(module.Header.SignatureOff) != len(image)-64 {
		t.Errorf("SignatureOff = %d, image %d bytes", module.Header.SignatureOff, len(image))
	}
}

func TestParseSignatureOffsetOutsideImage(t *testing.T) {
	image := twoExportModule().Build()
	if err := unaligned.PutUint32(image, jelftest.HeaderSignatureOff, uint32(len(image)+1)); err != nil {
		t.Fatal(err)
	}
	if _, err := jelf.Parse(image, "x"); !errors.Is(err, status.InvalidAddress) {
		t.Errorf("bad signature offset: got %v, want E_INVALID_ADDRESS", err)
	}
}

func TestParseDoesNotMutateImage(t *testing.T) {
	image := twoExportModule().Build()
	before := bytes.Clone(image)
	if _, err := jelf.Parse(image, "x"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(image, before) {
		t.Error("Parse mutated the caller's image")
	}
}
