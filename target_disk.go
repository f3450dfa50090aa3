// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// TargetDisk is the struct type that holds all information for interacting with the filesystem
type TargetDisk struct{}

// NewTargetDisk creates a new target for the local filesystem
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// CreateDir creates a directory at the specified path with the specified mode. If the directory already
// exists, nothing is done.
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory (%w)", err)
	}
	return nil
}

// CreateFile creates a file at the specified path with src as content. An existing file is
// truncated if overwrite is true. The written size is limited to maxSize, unless maxSize < 0.
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	// check for path validity and file existence+overwrite
	if stat, err := os.Lstat(path); !os.IsNotExist(err) {

		// something wrong with path
		if err != nil {
			return 0, fmt.Errorf("invalid path: %w", err)
		}

		if stat.IsDir() {
			return 0, fmt.Errorf("is a directory")
		}

		if !overwrite {
			return 0, ErrFileExists
		}
	}

	dstFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	// write data to file
	writer := limitWriter(dstFile, maxSize)
	n, err := io.Copy(writer, src)
	if err != nil {
		dstFile.Close()
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	// a failed close can lose buffered data
	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close file: %w", err)
	}
	return n, nil
}

// Lstat returns the FileInfo structure describing the named file.
// If there is an error, it will be of type *PathError.
func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// SupportsPermissions reports if the filesystem exposes posix permission bits.
func (d *TargetDisk) SupportsPermissions() bool {
	return posixPermissions
}
