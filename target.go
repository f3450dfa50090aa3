// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
)

// Target specifies all functions that are needed to materialize an archive on a filesystem.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. An existing file
	// is truncated and overwritten if overwrite is true, otherwise an error wrapping
	// [ErrFileExists] is returned. The mode is used when the file is created (respecting umask).
	// The number of written bytes must not exceed maxSize; if maxSize < 0, the size is
	// not limited. The number of bytes written is returned, also along with an error.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates the directory at path along with all missing parents. If the
	// directory already exists, nothing is done. An existing non-directory in the path
	// results in an error.
	CreateDir(path string, mode fs.FileMode) error

	// Lstat see docs for os.Lstat.
	Lstat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod. Main purpose is to restore the permission bits of an entry.
	Chmod(path string, mode fs.FileMode) error
}

// targetPath joins name with dst. An empty dst or "." resolves against the
// working directory of the target.
func targetPath(dst string, name string) string {
	if len(dst) == 0 {
		dst = "."
	}
	return filepath.Join(dst, name)
}

// createDir creates the directory name below dst including all missing parents
func createDir(t Target, dst string, name string, mode fs.FileMode) error {
	path := targetPath(dst, name)
	if err := t.CreateDir(path, mode); err != nil {
		return errors.Wrapf(err, "cannot create directory %s", path)
	}
	return nil
}

// createFile ensures that the parent directory of name exists below dst and creates
// the file with the content of src.
func createFile(t Target, dst string, name string, src io.Reader, cfg *Config, maxSize int64) (int64, error) {
	path := targetPath(dst, name)

	// parent directories are only created if missing
	parent := filepath.Dir(path)
	if _, err := t.Lstat(parent); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return 0, errors.Wrapf(err, "cannot check directory %s", parent)
		}
		if err := t.CreateDir(parent, cfg.CustomCreateDirMode()); err != nil {
			return 0, errors.Wrapf(err, "cannot create directory %s", parent)
		}
	}

	n, err := t.CreateFile(path, src, cfg.CustomCreateFileMode(), cfg.Overwrite(), maxSize)
	if err != nil {
		return n, errors.Wrapf(err, "cannot create file %s", path)
	}
	return n, nil
}
