// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package wikisource opens a MediaWiki XML dump for streaming,
// transparently unwrapping whichever compressed format real-world dumps
// ship in (plain .xml, .xml.bz2, .xml.gz, .xml.xz, ...). Format detection
// is delegated to mholt/archives rather than dispatched on file
// extension, so a dump that was renamed or re-compressed still opens
// correctly.
package wikisource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mholt/archives"
)

// Open returns a stream of the decompressed wiki XML found at path. The
// caller must Close the returned ReadCloser.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wikisource: opening %s: %w", path, err)
	}

	format, reader, err := archives.Identify(ctx, path, f)
	if errors.Is(err, archives.NoMatch) {
		// No archive or compression format matched (e.g. plain .xml):
		// stream the file as-is from Identify's buffered reader.
		return &teeCloser{Reader: reader, closer: f}, nil
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("wikisource: identifying format of %s: %w", path, err)
	}

	decompressor, ok := format.(archives.Decompressor)
	if !ok {
		// Not a recognized compressed format: stream the file as-is,
		// starting from wherever Identify left the cursor.
		return &teeCloser{Reader: reader, closer: f}, nil
	}

	decompressed, err := decompressor.OpenReader(reader)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("wikisource: opening decompressed stream for %s: %w", path, err)
	}

	return &decompressedFile{file: f, decompressed: decompressed}, nil
}

// teeCloser lets an already-buffered reader (from archives.Identify's
// peek) be read from while still closing the underlying file on Close.
type teeCloser struct {
	io.Reader
	closer io.Closer
}

func (t *teeCloser) Close() error {
	return t.closer.Close()
}

// decompressedFile pairs a decompression stream with the underlying file
// it reads from, so Close releases both, decompression stream first.
type decompressedFile struct {
	file         *os.File
	decompressed io.ReadCloser
}

func (d *decompressedFile) Read(p []byte) (int, error) {
	return d.decompressed.Read(p)
}

func (d *decompressedFile) Close() error {
	closeErr := d.decompressed.Close()
	if err := d.file.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}
