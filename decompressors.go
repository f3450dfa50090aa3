// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// compression methods beyond store and deflate
// reference: APPNOTE.TXT section 4.4.5
const (
	zipMethodBzip2 uint16 = 12
	zipMethodXz    uint16 = 95
)

// registerDecompressors adds the compression methods to zr that are not
// handled by the zip package itself.
func registerDecompressors(zr *zip.Reader) {
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	zr.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())
	zr.RegisterDecompressor(zipMethodXz, decompressXz)
	zr.RegisterDecompressor(zipMethodBzip2, decompressBzip2)
}

// decompressXz returns a reader that decompresses src with the xz algorithm
func decompressXz(src io.Reader) io.ReadCloser {
	r, err := xz.NewReader(src)
	if err != nil {
		return errReadCloser{err: err}
	}
	return io.NopCloser(r)
}

// decompressBzip2 returns a reader that decompresses src with the bzip2 algorithm
func decompressBzip2(src io.Reader) io.ReadCloser {
	r, err := bzip2.NewReader(src, &bzip2.ReaderConfig{})
	if err != nil {
		return errReadCloser{err: err}
	}
	return r
}

// errReadCloser reports a failed decompressor setup on the first read
type errReadCloser struct {
	err error
}

func (e errReadCloser) Read([]byte) (int, error) {
	return 0, e.err
}

func (e errReadCloser) Close() error {
	return nil
}
