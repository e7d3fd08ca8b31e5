package domain

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"

	"github.com/klauspost/compress/gzip"

	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// PackageHandle is an opened package whose manifest has been read.
// The payload is only touched when Payload is called.
type PackageHandle struct {
	Manifest m.Manifest

	path    m.Path
	file    fs.File
	logger  *slog.Logger
	payload *PayloadReader
}

// Path returns the location the package was opened from.
func (h *PackageHandle) Path() m.Path {
	return h.path
}

// Payload starts reading the archive block. It may be called once.
func (h *PackageHandle) Payload() (*PayloadReader, error) {
	if h.payload != nil {
		return nil, etoerr.ErrPackageRead(string(h.path), errors.New("payload already read"))
	}

	length, err := readLength(h.file)
	if err != nil {
		return nil, etoerr.ErrPackageRead(string(h.path), err)
	}

	h.logger.Info("reading archive", "bytes", length)

	gz, err := gzip.NewReader(io.LimitReader(h.file, int64(length)))
	if err != nil {
		return nil, etoerr.ErrExtraction(string(h.path), fmt.Errorf("failed to decode gzip data block: %w", err))
	}

	h.payload = &PayloadReader{
		path: h.path,
		gz:   gz,
		tar:  tar.NewReader(gz),
	}

	return h.payload, nil
}

// Close releases the package file.
func (h *PackageHandle) Close() error {
	if h.payload != nil {
		_ = h.payload.gz.Close()
	}

	return h.file.Close()
}

// PayloadEntry is one file stored in a package.
type PayloadEntry struct {
	Path m.RelPath
	Mode fs.FileMode
	io.Reader
}

// PayloadReader iterates over the files of a package payload.
type PayloadReader struct {
	path m.Path
	gz   *gzip.Reader
	tar  *tar.Reader
}

// Next returns the next entry, or io.EOF once the payload is exhausted.
// The entry's Reader is only valid until the following call to Next.
func (r *PayloadReader) Next() (PayloadEntry, error) {
	header, err := r.tar.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Reading gzip to its end verifies the CRC32 and size trailer.
			if _, err := io.Copy(io.Discard, r.gz); err != nil {
				return PayloadEntry{}, etoerr.ErrExtraction(string(r.path), err)
			}

			return PayloadEntry{}, io.EOF
		}

		return PayloadEntry{}, etoerr.ErrExtraction(string(r.path), err)
	}

	if header.Typeflag != tar.TypeReg {
		return PayloadEntry{}, etoerr.ErrExtraction(header.Name, fmt.Errorf("unsupported entry type %q", header.Typeflag))
	}

	rel := m.RelPath(path.Clean(header.Name))
	if !rel.IsLocal() {
		return PayloadEntry{}, etoerr.ErrExtraction(header.Name, errors.New("entry escapes target directory"))
	}

	mode := header.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	return PayloadEntry{
		Path:   rel,
		Mode:   mode,
		Reader: r.tar,
	}, nil
}
