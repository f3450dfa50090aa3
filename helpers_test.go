// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// zipMethodRaw is a compression method that no decompressor is registered for
const zipMethodRaw uint16 = 99

// testEntry describes an entry of a test archive
type testEntry struct {
	name    string
	content string
	comment string
	method  uint16
	mode    fs.FileMode // set with SetMode, if not zero
	noMode  bool        // unix creator without recorded mode
}

// createTestZip returns a zip archive with the entries in the given order
func createTestZip(t *testing.T, entries ...testEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	zw.RegisterCompressor(zipMethodXz, func(w io.Writer) (io.WriteCloser, error) {
		return &lazyXzWriter{w: w}, nil
	})
	zw.RegisterCompressor(zipMethodBzip2, func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{})
	})
	zw.RegisterCompressor(zipMethodRaw, func(w io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{w}, nil
	})

	for _, e := range entries {
		fh := &zip.FileHeader{
			Name:    e.name,
			Method:  e.method,
			Comment: e.comment,
		}
		if e.mode != 0 {
			fh.SetMode(e.mode)
		}
		if e.noMode {
			fh.CreatorVersion = creatorUnix << 8
		}
		w, err := zw.CreateHeader(fh)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

// openTestZip opens data as zip archive
func openTestZip(t *testing.T, data []byte, cfg *Config) *ZipArchive {
	t.Helper()
	if cfg == nil {
		cfg = NewConfig()
	}
	za, err := OpenZip(bytes.NewReader(data), int64(len(data)), cfg)
	require.NoError(t, err)
	return za
}

// writeTestZip stores data as archive.zip in dir and returns the path
func writeTestZip(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "archive.zip")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// lazyXzWriter starts the xz stream on the first write. xz.NewWriter emits the
// stream header immediately, but the zip writer creates the compressor before it
// writes the local file header.
type lazyXzWriter struct {
	w  io.Writer
	xw *xz.Writer
}

func (l *lazyXzWriter) Write(p []byte) (int, error) {
	if l.xw == nil {
		xw, err := xz.NewWriter(l.w)
		if err != nil {
			return 0, err
		}
		l.xw = xw
	}
	return l.xw.Write(p)
}

func (l *lazyXzWriter) Close() error {
	if l.xw == nil {
		return nil
	}
	return l.xw.Close()
}
