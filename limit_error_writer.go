// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import "io"

// limitErrorWriter is a wrapper around an io.Writer that returns
// ErrMaxExtractionSizeExceeded once the limit is reached.
type limitErrorWriter struct {
	W io.Writer // underlying writer
	L int64     // limit
	N int64     // number of bytes written
}

// Write writes p to the underlying writer until the limit is reached. The part of p
// that fits into the limit is written before the error is returned.
func (l *limitErrorWriter) Write(p []byte) (n int, err error) {
	if l.N >= l.L && len(p) > 0 {
		return 0, ErrMaxExtractionSizeExceeded
	}

	if int64(len(p)) > l.L-l.N {
		n, err = l.W.Write(p[:l.L-l.N])
		l.N += int64(n)
		if err == nil {
			err = ErrMaxExtractionSizeExceeded
		}
		return n, err
	}

	n, err = l.W.Write(p)
	l.N += int64(n)
	return n, err
}

// limitWriter returns w limited to maxSize bytes. A negative maxSize disables the limit.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &limitErrorWriter{W: w, L: maxSize}
}
