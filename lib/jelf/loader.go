// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jelf

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/bureau-foundation/jelf/lib/status"
)

// MaxImageSize caps how many bytes the loader will hold in memory for
// one module, compressed sources included after decompression. Device
// flash is measured in hundreds of kilobytes; anything near this limit
// is garbage or an attack, and refusing it early beats thrashing the
// allocator.
const MaxImageSize = 16 << 20

// Loader runs the parse → resolve → digest pipeline against module
// files. The zero value is ready to use. A Loader is stateless between
// calls; one instance may serve concurrent invocations.
type Loader struct {
	// Logger receives debug traces of pipeline progress. Nil means no
	// logging. Sensitive header fields are never logged regardless.
	Logger *slog.Logger
}

func (l *Loader) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// HashImage runs the full pipeline over an in-memory image: parse,
// resolve against expectedExports, digest at the given strength. The
// caller's image is not mutated.
func (l *Loader) HashImage(image []byte, basename string, expectedExports int, strength Strength) (Digest, error) {
	module, err := Parse(image, basename)
	if err != nil {
		return Digest{}, err
	}
	l.log().Debug("parsed module",
		"basename", basename,
		"version", int(module.Header.VersionMajor),
		"sections", len(module.Sections),
		"symbols", len(module.Symbols),
		"relocations", len(module.Relocations))

	resolved, err := module.Resolve(expectedExports)
	if err != nil {
		return Digest{}, err
	}
	l.log().Debug("resolved module", "basename", basename, "exports", len(resolved.Exports))

	digest, err := resolved.Digest(strength)
	if err != nil {
		return Digest{}, err
	}
	l.log().Debug("hashed module", "basename", basename, "strength", int(strength))
	return digest, nil
}

// HashFile reads the module at path and runs the pipeline. Gzipped
// modules (provisioning bundles ship as .jelf.gz) are decompressed
// transparently. The byte source is released on every return path.
func (l *Loader) HashFile(path, basename string, expectedExports int, strength Strength) (Digest, error) {
	image, release, err := l.ReadImage(path)
	if err != nil {
		return Digest{}, err
	}
	defer release()
	return l.HashImage(image, basename, expectedExports, strength)
}

// LoaderHash is the classic single-call contract: load the module at
// path, resolve it against expectedExports entry points, and return
// its 256-bit digest. Basename defaults to the file name when empty.
func LoaderHash(path, basename string, expectedExports int) (Digest, error) {
	if basename == "" {
		basename = Basename(path)
	}
	var loader Loader
	return loader.HashFile(path, basename, expectedExports, Strength256)
}

// Basename derives the display/namespacing identifier from a module
// path: the file name with .jelf/.gz suffixes stripped.
func Basename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".jelf")
	return name
}

// gzipMagic is the two-byte prefix of every gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// ReadImage acquires the raw module bytes at path. The returned
// release function must be called exactly once when the image is no
// longer needed; on Linux it may unmap memory, so the image must not
// be used afterwards. The image is read-only; Parse never mutates it
// and Resolve copies before patching.
func (l *Loader) ReadImage(path string) ([]byte, func(), error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, status.Errorf(status.Failure, "opening module: %w", err)
	}

	var prefix [2]byte
	n, err := io.ReadFull(file, prefix[:])
	if err != nil && n == 0 && err != io.EOF {
		file.Close()
		return nil, nil, status.Errorf(status.Failure, "reading module: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, nil, status.Errorf(status.Failure, "rewinding module: %w", err)
	}

	if n == 2 && prefix[0] == gzipMagic[0] && prefix[1] == gzipMagic[1] {
		defer file.Close()
		return readCompressed(file)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, status.Errorf(status.Failure, "sizing module: %w", err)
	}
	size := info.Size()
	if size > MaxImageSize {
		file.Close()
		return nil, nil, status.Errorf(status.UnableAllocateMem,
			"module is %d bytes, limit is %d", size, MaxImageSize)
	}

	// The mmap fast path avoids a copy for plain files; platforms
	// without it fall back to an ordinary bounded read. The descriptor
	// is not needed once the mapping (or read) exists.
	if image, release, err := mapImage(file, int(size)); err == nil {
		file.Close()
		l.log().Debug("mapped module", "path", path, "bytes", size)
		return image, release, nil
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, MaxImageSize))
	if err != nil {
		return nil, nil, status.Errorf(status.Failure, "reading module: %w", err)
	}
	return image, func() {}, nil
}

func readCompressed(file *os.File) ([]byte, func(), error) {
	reader, err := gzip.NewReader(file)
	if err != nil {
		return nil, nil, status.Errorf(status.UndefinedBlockType, "opening gzip stream: %w", err)
	}
	defer reader.Close()

	image, err := io.ReadAll(io.LimitReader(reader, MaxImageSize+1))
	if err != nil {
		return nil, nil, status.Errorf(status.Failure, "decompressing module: %w", err)
	}
	if len(image) > MaxImageSize {
		return nil, nil, status.Errorf(status.UnableAllocateMem,
			"decompressed module exceeds %d-byte limit", MaxImageSize)
	}
	return image, func() {}, nil
}
