// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"io"
	"io/fs"
)

// Archive is a random access view on an opened archive. The archive has been
// validated as a structurally correct container when it is handed to [Extract].
type Archive interface {
	// Type returns the archive type, e.g. "zip".
	Type() string

	// Len returns the number of entries.
	Len() int

	// Entry returns the entry at index. An error is returned if the entry
	// metadata cannot be decoded.
	Entry(index int) (Entry, error)
}

// Entry is a single member of an [Archive].
type Entry interface {
	// Index returns the position of the entry in the archive.
	Index() int

	// Name returns the raw, archive internal name. Directory entries carry
	// a trailing slash.
	Name() string

	// EnclosedName returns the sanitized relative path of the entry. The second
	// return value is false if the name cannot be represented without escaping
	// the extraction root.
	EnclosedName() (string, bool)

	// Comment returns the entry comment.
	Comment() string

	// Size returns the declared uncompressed size.
	Size() int64

	// UnixMode returns the recorded permission bits, if the archive has any.
	UnixMode() (fs.FileMode, bool)

	// Open returns a reader for the decompressed content of the entry.
	Open() (io.ReadCloser, error)
}
