package domain

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"eto.dev/pkg/eto/internal/adapter"
	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// Magic identifies the package container format and its version.
const Magic = "EtoPack1"

// PackageExtension is the recommended file extension for packages.
const PackageExtension = ".etopack"

const lengthPrefixSize = 4

// Codec writes and reads package containers.
//
// A container is the magic, a u32 little-endian length and that many bytes of
// manifest JSON, then a u32 little-endian length and that many bytes of
// gzip-compressed tar holding the added and changed files.
type Codec interface {
	// Encode writes a package for diff to output, reading file content from
	// contentRoot. Output is either complete or absent.
	Encode(diff m.Diff, contentRoot, output m.Path) error

	// Open validates the magic, reads the manifest and leaves the payload unread.
	Open(path m.Path) (*PackageHandle, error)

	// ReadManifest reads only the manifest of a package.
	ReadManifest(path m.Path) (m.Manifest, error)
}

// CodecOption configures a Codec.
type CodecOption func(*codec)

// WithCompressionLevel sets the gzip level used for payloads.
func WithCompressionLevel(level int) CodecOption {
	return func(c *codec) {
		c.level = level
	}
}

type codec struct {
	fsAdapter adapter.TreeFSAdapter
	logger    *slog.Logger
	level     int
}

// NewCodec constructs a Codec.
func NewCodec(fsAdapter adapter.TreeFSAdapter, logger *slog.Logger, options ...CodecOption) Codec {
	c := &codec{
		fsAdapter: fsAdapter,
		logger:    loggerOrDefault(logger),
		level:     gzip.DefaultCompression,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

func (c *codec) Encode(diff m.Diff, contentRoot, output m.Path) error {
	c.logger.Info("generating package", "path", output)

	manifest, err := json.Marshal(m.Manifest{
		Version: m.ManifestVersion,
		Diff:    diff,
	})
	if err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	// The whole archive is buffered in memory because its length is written
	// before its bytes.
	archive, err := c.buildArchive(diff, contentRoot)
	if err != nil {
		return err
	}

	if uint64(len(manifest)) > math.MaxUint32 || uint64(archive.Len()) > math.MaxUint32 {
		return etoerr.ErrPackageWrite(string(output), errors.New("package block exceeds 4 GiB"))
	}

	return c.writeContainer(output, manifest, archive.Bytes())
}

func (c *codec) buildArchive(diff m.Diff, contentRoot m.Path) (*bytes.Buffer, error) {
	var archive bytes.Buffer

	gz, err := gzip.NewWriterLevel(&archive, c.level)
	if err != nil {
		return nil, etoerr.ErrPackageWrite(string(contentRoot), err)
	}

	tw := tar.NewWriter(gz)

	for _, rel := range diff.Payload() {
		if err := c.appendFile(tw, contentRoot, rel); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, etoerr.ErrPackageWrite(string(contentRoot), err)
	}

	if err := gz.Close(); err != nil {
		return nil, etoerr.ErrPackageWrite(string(contentRoot), err)
	}

	return &archive, nil
}

func (c *codec) appendFile(tw *tar.Writer, contentRoot m.Path, rel m.RelPath) error {
	file, err := c.fsAdapter.Open(rel.Join(contentRoot))
	if err != nil {
		return etoerr.ErrMissingSourceFile(string(rel), err)
	}

	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return etoerr.ErrMissingSourceFile(string(rel), err)
	}

	if !info.Mode().IsRegular() {
		return etoerr.ErrMissingSourceFile(string(rel), fmt.Errorf("not a regular file: %s", info.Mode()))
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     string(rel),
		Mode:     int64(info.Mode().Perm()),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Format:   tar.FormatPAX,
	}

	if err := tw.WriteHeader(header); err != nil {
		return etoerr.ErrPackageWrite(string(rel), err)
	}

	// A file that changed size since Stat makes Copy or the next header fail.
	if _, err := io.Copy(tw, file); err != nil {
		return etoerr.ErrFileRead("package", string(rel), err)
	}

	c.logger.Debug("packed", "path", rel, "bytes", info.Size())

	return nil
}

func (c *codec) writeContainer(output m.Path, manifest, archive []byte) (err error) {
	dir, base := filepath.Split(string(output))
	if dir == "" {
		dir = "."
	}

	tmp, err := c.fsAdapter.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	tmpPath := m.Path(tmp.Name())

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = c.fsAdapter.Remove(tmpPath)
		}
	}()

	var header bytes.Buffer

	header.WriteString(Magic)
	header.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(manifest))))
	header.Write(manifest)
	header.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(archive))))

	if _, err = tmp.Write(header.Bytes()); err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	if _, err = tmp.Write(archive); err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	if err = tmp.Sync(); err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	if err = tmp.Close(); err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	if err = c.fsAdapter.Rename(tmpPath, output); err != nil {
		return etoerr.ErrPackageWrite(string(output), err)
	}

	c.logger.Info("package written", "path", output, "manifest_bytes", len(manifest), "payload_bytes", len(archive))

	return nil
}

func (c *codec) Open(path m.Path) (*PackageHandle, error) {
	c.logger.Info("loading package", "path", path)

	file, err := c.fsAdapter.Open(path)
	if err != nil {
		return nil, etoerr.ErrPackageRead(string(path), err)
	}

	manifest, err := readHeader(file, path)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &PackageHandle{
		Manifest: manifest,
		path:     path,
		file:     file,
		logger:   c.logger,
	}, nil
}

func (c *codec) ReadManifest(path m.Path) (m.Manifest, error) {
	handle, err := c.Open(path)
	if err != nil {
		return m.Manifest{}, err
	}

	defer func() {
		_ = handle.Close()
	}()

	return handle.Manifest, nil
}

// readHeader consumes the magic and manifest block of an opened package.
func readHeader(file fs.File, path m.Path) (m.Manifest, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(file, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return m.Manifest{}, etoerr.ErrBadMagic(string(path))
		}

		return m.Manifest{}, etoerr.ErrPackageRead(string(path), err)
	}

	if string(magic) != Magic {
		return m.Manifest{}, etoerr.ErrBadMagic(string(path))
	}

	length, err := readLength(file)
	if err != nil {
		return m.Manifest{}, etoerr.ErrPackageRead(string(path), err)
	}

	if info, statErr := file.Stat(); statErr == nil && int64(len(Magic)+lengthPrefixSize)+int64(length) > info.Size() {
		return m.Manifest{}, etoerr.ErrPackageRead(string(path), fmt.Errorf("manifest length %d exceeds file size %d", length, info.Size()))
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(file, raw); err != nil {
		return m.Manifest{}, etoerr.ErrPackageRead(string(path), err)
	}

	var manifest m.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return m.Manifest{}, etoerr.ErrMalformedManifest(string(path), err)
	}

	return manifest, nil
}

func readLength(r io.Reader) (uint32, error) {
	var buf [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}
