// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/jelf/lib/jelf"
	"github.com/bureau-foundation/jelf/lib/jelf/jelftest"
	"github.com/bureau-foundation/jelf/lib/status"
)

func mustResolve(t *testing.T, builder *jelftest.Builder, exports int) *jelf.Resolved {
	t.Helper()
	module := mustParse(t, builder.Build())
	resolved, err := module.Resolve(exports)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return resolved
}

func TestDigestWidths(t *testing.T) {
	resolved := mustResolve(t, twoExportModule(), 2)

	tests := []struct {
		strength jelf.Strength
		binSize  int
		hexSize  int
	}{
		{jelf.Strength64, jelf.Bin64, jelf.Hex64},
		{jelf.Strength128, jelf.Bin128, jelf.Hex128},
		{jelf.Strength256, jelf.Bin256, jelf.Hex256},
		{jelf.Strength512, jelf.Bin512, jelf.Hex512},
	}
	for _, test := range tests {
		digest, err := resolved.Digest(test.strength)
		if err != nil {
			t.Fatalf("Digest(%d): %v", test.strength, err)
		}
		if len(digest.Bytes()) != test.binSize {
			t.Errorf("strength %d: %d binary bytes, want %d",
				test.strength, len(digest.Bytes()), test.binSize)
		}
		// Hex form is 2*width characters; the wire contract's buffer
		// size additionally counts the C NUL terminator.
		if len(digest.Hex()) != test.hexSize-1 {
			t.Errorf("strength %d: hex length %d, want %d",
				test.strength, len(digest.Hex()), test.hexSize-1)
		}
		if test.strength.HexSize() != test.hexSize {
			t.Errorf("HexSize(%d) = %d, want %d",
				test.strength, test.strength.HexSize(), test.hexSize)
		}
	}
}

func TestDigestInvalidStrength(t *testing.T) {
	resolved := mustResolve(t, twoExportModule(), 2)
	for _, strength := range []jelf.Strength{0, 1, 65, 160, 257, 1024} {
		digest, err := resolved.Digest(strength)
		if !errors.Is(err, status.InvalidStrength) {
			t.Errorf("Digest(%d): got %v, want E_INVALID_STRENGTH", strength, err)
		}
		if digest != (jelf.Digest{}) {
			t.Errorf("Digest(%d) wrote output on failure", strength)
		}
	}
}

func TestDigestDeterministic(t *testing.T) {
	resolved := mustResolve(t, twoExportModule(), 2)
	first, err := resolved.Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	second, err := resolved.Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("digest not deterministic: %s != %s", first.Hex(), second.Hex())
	}
}

func TestDigestHexLowercaseFixedWidth(t *testing.T) {
	resolved := mustResolve(t, twoExportModule(), 2)
	digest, err := resolved.Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	hexForm := digest.Hex()
	if hexForm != strings.ToLower(hexForm) {
		t.Errorf("hex form is not lowercase: %s", hexForm)
	}
	if len(hexForm) != 64 {
		t.Errorf("hex length = %d, want 64", len(hexForm))
	}
}

func TestDigestHexRoundTrip(t *testing.T) {
	resolved := mustResolve(t, twoExportModule(), 2)
	for _, strength := range []jelf.Strength{jelf.Strength64, jelf.Strength128, jelf.Strength256, jelf.Strength512} {
		digest, err := resolved.Digest(strength)
		if err != nil {
			t.Fatal(err)
		}
		parsed, err := jelf.ParseHex(digest.Hex())
		if err != nil {
			t.Fatalf("ParseHex: %v", err)
		}
		if !parsed.Equal(digest) {
			t.Errorf("strength %d: hex round-trip lost the value", strength)
		}
	}
}

func TestParseHexRejectsOddSizes(t *testing.T) {
	if _, err := jelf.ParseHex("abcdef"); !errors.Is(err, status.InvalidStrength) {
		t.Errorf("3-byte digest: got %v, want E_INVALID_STRENGTH", err)
	}
	if _, err := jelf.ParseHex("zz"); err == nil {
		t.Error("non-hex input should fail")
	}
}

func TestDigestWriteHex(t *testing.T) {
	resolved := mustResolve(t, twoExportModule(), 2)
	digest, err := resolved.Digest(jelf.Strength128)
	if err != nil {
		t.Fatal(err)
	}
	var sink bytes.Buffer
	n, err := digest.WriteHex(&sink)
	if err != nil {
		t.Fatalf("WriteHex: %v", err)
	}
	if n != 32 || sink.String() != digest.Hex() {
		t.Errorf("WriteHex wrote %d bytes: %q", n, sink.String())
	}
}

func TestDigestStableUnderResigning(t *testing.T) {
	signedOnce := twoExportModule()
	signedOnce.Signature = bytes.Repeat([]byte{0x11}, 64)
	signedTwice := twoExportModule()
	signedTwice.Signature = bytes.Repeat([]byte{0x77}, 64)

	// Signed images carry a nonzero signature offset in the hashed
	// header, so signed and unsigned digests legitimately differ; the
	// invariant is that swapping one signature for another does not
	// move the digest.
	first := mustResolve(t, signedOnce, 2)
	second := mustResolve(t, signedTwice, 2)
	firstDigest, err := first.Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	secondDigest, err := second.Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	if !firstDigest.Equal(secondDigest) {
		t.Error("re-signing changed the digest")
	}
}

func TestDigestExcludesTableBytes(t *testing.T) {
	// Two modules identical except for a symbol's export-namespace
	// index: the symbol table differs, the hashed content does not.
	first := twoExportModule()
	second := twoExportModule()
	second.AddSymbol(jelftest.SymbolSpec{Name: 7, Section: 0, Value: 1})
	first.AddSymbol(jelftest.SymbolSpec{Name: 9, Section: 0, Value: 1})

	firstDigest, err := mustResolve(t, first, 2).Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	secondDigest, err := mustResolve(t, second, 2).Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	if !firstDigest.Equal(secondDigest) {
		t.Error("table-only change moved the digest")
	}
}

func TestDigestCoversSectionContent(t *testing.T) {
	first := twoExportModule()

	second := jelftest.New()
	second.AddSection(jelftest.SectionSpec{
		Kind:  jelf.SectionCode,
		Flags: jelf.SectionFlagAlloc | jelf.SectionFlagExec,
		Data:  []byte{0x36, 0x41, 0x00, 0x81, 0xfb, 0xff, 0xe0, 0x08, 0x01}, // last byte differs
	})
	data := second.AddSection(jelftest.SectionSpec{
		Kind:  jelf.SectionData,
		Flags: jelf.SectionFlagAlloc,
		Data:  []byte("jolt-data"),
	})
	second.AddSection(jelftest.SectionSpec{
		Kind:    jelf.SectionNoBits,
		Flags:   jelf.SectionFlagAlloc,
		MemSize: 128,
	})
	second.AddSymbol(jelftest.SymbolSpec{Name: 1, Section: 0, Flags: jelf.SymbolFlagExport})
	second.AddSymbol(jelftest.SymbolSpec{Name: 2, Section: data, Flags: jelf.SymbolFlagExport, Value: 4})
	second.AddSymbol(jelftest.SymbolSpec{Name: 0, Section: 0, Value: 6})

	firstDigest, err := mustResolve(t, first, 2).Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	secondDigest, err := mustResolve(t, second, 2).Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	if firstDigest.Equal(secondDigest) {
		t.Error("code byte change did not move the digest")
	}
}

func TestDigestCoversRelocationResult(t *testing.T) {
	// The digest is computed over the finalized (patched) image, so
	// two modules that differ only in a relocation addend hash
	// differently even though their unpatched section bytes match.
	build := func(addend int32) *jelftest.Builder {
		builder := twoExportModule()
		symbol := builder.AddSymbol(jelftest.SymbolSpec{Section: 1, Value: 0})
		builder.AddReloc(jelftest.RelocSpec{
			Section: 0, Offset: 0, Symbol: symbol,
			Kind: jelf.RelocAbsolute, Width: 4, Addend: addend,
		})
		return builder
	}

	firstDigest, err := mustResolve(t, build(0), 2).Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	secondDigest, err := mustResolve(t, build(4), 2).Digest(jelf.Strength256)
	if err != nil {
		t.Fatal(err)
	}
	if firstDigest.Equal(secondDigest) {
		t.Error("relocation result is not covered by the digest")
	}
}
