// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// fileExtensionZip is the file extension for zip files.
const fileExtensionZip = "zip"

// host systems as stored in the upper byte of the creator version
// reference: APPNOTE.TXT section 4.4.2
const (
	creatorFAT    = 0
	creatorUnix   = 3
	creatorNTFS   = 11
	creatorVFAT   = 14
	creatorMacOSX = 19
)

// unix special mode bits
const (
	unixSetuid = 04000
	unixSetgid = 02000
	unixSticky = 01000
)

// msdos attribute bits
const (
	msdosReadOnly = 0x01
	msdosDir      = 0x10
)

// ZipArchive is an [Archive] backed by a zip central directory.
type ZipArchive struct {
	zr   *zip.Reader
	size int64
}

// OpenZip reads the central directory of the zip archive in r. The size of the
// input is checked against [Config.MaxInputSize]. An invalid container results in
// an [Error] of kind [KindArchiveFormat]. If cfg is nil, the default configuration is used.
func OpenZip(r io.ReaderAt, size int64, cfg *Config) (*ZipArchive, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	if err := cfg.CheckInputSize(size); err != nil {
		return nil, newError(cfg, KindArchiveFormat, "check input size", "", -1, err)
	}

	// insecure names are reported along with a usable reader, entries are
	// sanitized individually during extraction
	zr, err := zip.NewReader(r, size)
	if err != nil && zr == nil {
		return nil, newError(cfg, KindArchiveFormat, "read zip archive", "", -1, err)
	}
	if err != nil {
		cfg.Logger().Debug("zip archive contains insecure names", "error", err)
	}
	registerDecompressors(zr)

	cfg.Logger().Debug("opened zip archive", "entries", len(zr.File), "size", size)
	return &ZipArchive{zr: zr, size: size}, nil
}

// OpenZipFile opens the zip archive at path. The returned closer must be closed
// after the extraction. A path that cannot be opened results in an [Error] of kind
// [KindOpen]. If cfg is nil, the default configuration is used.
func OpenZipFile(path string, cfg *Config) (*ZipArchive, io.Closer, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, newError(cfg, KindOpen, "open archive", path, -1, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, newError(cfg, KindOpen, "stat archive", path, -1, err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, nil, newError(cfg, KindOpen, "open archive", path, -1, fmt.Errorf("is a directory"))
	}

	za, err := OpenZip(f, stat.Size(), cfg)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return za, f, nil
}

// Type returns the file extension for zip files
func (z *ZipArchive) Type() string {
	return fileExtensionZip
}

// Len returns the number of entries in the central directory
func (z *ZipArchive) Len() int {
	return len(z.zr.File)
}

// InputSize returns the size of the archive
func (z *ZipArchive) InputSize() int64 {
	return z.size
}

// Comment returns the archive comment
func (z *ZipArchive) Comment() string {
	return z.zr.Comment
}

// Entry returns the entry at index
func (z *ZipArchive) Entry(index int) (Entry, error) {
	if index < 0 || index >= len(z.zr.File) {
		return nil, fmt.Errorf("invalid entry index %d", index)
	}
	zf := z.zr.File[index]
	if zf == nil {
		return nil, fmt.Errorf("missing header for entry %d", index)
	}
	return &zipEntry{index: index, zf: zf}, nil
}

// zipEntry is an entry in a zip archive
type zipEntry struct {
	index int
	zf    *zip.File
}

// Index returns the position in the central directory
func (z *zipEntry) Index() int {
	return z.index
}

// Name returns the raw name of the entry
func (z *zipEntry) Name() string {
	return z.zf.Name
}

// EnclosedName returns the sanitized name of the entry
func (z *zipEntry) EnclosedName() (string, bool) {
	return enclosedName(z.zf.Name)
}

// Comment returns the comment of the entry
func (z *zipEntry) Comment() string {
	return z.zf.Comment
}

// Size returns the uncompressed size of the entry
func (z *zipEntry) Size() int64 {
	return int64(z.zf.UncompressedSize64)
}

// UnixMode returns the permission bits of the entry
func (z *zipEntry) UnixMode() (fs.FileMode, bool) {
	return unixMode(&z.zf.FileHeader)
}

// Open returns a reader for the decompressed content. Errors while reading from
// the reader are marked as decode errors.
func (z *zipEntry) Open() (io.ReadCloser, error) {
	rc, err := z.zf.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", z.zf.Name)
	}
	return &entryReader{rc: rc}, nil
}

// enclosedName resolves name to a relative, OS specific path that cannot escape
// the extraction root. The name is rejected if it contains a NUL byte, is absolute
// or has a volume prefix, or if a parent reference climbs above the root.
func enclosedName(name string) (string, bool) {
	if strings.ContainsRune(name, 0) {
		return "", false
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", false
	}
	if len(name) >= 2 && name[1] == ':' {
		return "", false
	}

	var parts []string
	depth := 0
	for _, part := range strings.FieldsFunc(name, isSeparator) {
		switch part {
		case ".":
		case "..":
			if depth == 0 {
				return "", false
			}
			depth--
			parts = parts[:len(parts)-1]
		default:
			depth++
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return ".", true
	}
	return filepath.Join(parts...), true
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// isDirName reports if the raw entry name marks a directory
func isDirName(name string) bool {
	return strings.HasSuffix(name, "/")
}

// unixMode derives the permission bits of fh from the host system that created
// the entry. Unix hosts store the mode in the upper half of the external attributes,
// msdos style hosts only know a directory and a read-only flag.
func unixMode(fh *zip.FileHeader) (fs.FileMode, bool) {
	switch fh.CreatorVersion >> 8 {
	case creatorUnix, creatorMacOSX:
		m := fh.ExternalAttrs >> 16
		if m == 0 {
			return 0, false
		}
		mode := fs.FileMode(m & 0777)
		if m&unixSetuid != 0 {
			mode |= fs.ModeSetuid
		}
		if m&unixSetgid != 0 {
			mode |= fs.ModeSetgid
		}
		if m&unixSticky != 0 {
			mode |= fs.ModeSticky
		}
		return mode, true

	case creatorFAT, creatorNTFS, creatorVFAT:
		var mode fs.FileMode = 0664
		if fh.ExternalAttrs&msdosDir != 0 || isDirName(fh.Name) {
			mode = 0775
		}
		if fh.ExternalAttrs&msdosReadOnly != 0 {
			mode &= 0555
		}
		return mode, true
	}

	return 0, false
}

// decodeError marks an error that occurred while decompressing entry content
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("cannot decode entry content: %s", e.err)
}

func (e *decodeError) Unwrap() error {
	return e.err
}

// entryReader wraps read errors of an entry into a decodeError
type entryReader struct {
	rc io.ReadCloser
}

func (r *entryReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && err != io.EOF {
		err = &decodeError{err: err}
	}
	return n, err
}

func (r *entryReader) Close() error {
	return r.rc.Close()
}
