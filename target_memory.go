// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	p "path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// TargetMemory is an in-memory filesystem implementation of [Target]. It maps cleaned,
// slash separated paths to [MemoryEntry] values. The working directory "." always exists.
// Permission bits are recorded but not enforced. TargetMemory also implements [fs.FS],
// [fs.ReadFileFS] and [fs.ReadDirFS], so extracted content can be inspected.
type TargetMemory struct {
	files sync.Map // map[string]*MemoryEntry
}

// NewTargetMemory creates a new in-memory filesystem.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

// memoryPath converts path to the key used in the map
func memoryPath(path string) (string, error) {
	path = p.Clean(filepath.ToSlash(path))
	if !fs.ValidPath(path) {
		return "", fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	return path, nil
}

// load returns the entry at the cleaned path
func (m *TargetMemory) load(path string) (*MemoryEntry, bool) {
	if path == "." {
		return &MemoryEntry{FileInfo: &MemoryFileInfo{name: ".", mode: fs.ModeDir | 0777}}, true
	}
	e, ok := m.files.Load(path)
	if !ok {
		return nil, false
	}
	return e.(*MemoryEntry), true
}

// CreateDir creates the directory at path and all missing parents. Existing
// directories are left untouched. If a path element is not a directory, an error
// is returned.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	path, err := memoryPath(path)
	if err != nil {
		return err
	}
	if path == "." {
		return nil
	}

	elements := strings.Split(path, "/")
	for i := range elements {
		sub := strings.Join(elements[:i+1], "/")
		if me, ok := m.load(sub); ok {
			if !me.IsDir() {
				return fmt.Errorf("not a directory: %s", sub)
			}
			continue
		}
		m.files.Store(sub, &MemoryEntry{
			FileInfo: &MemoryFileInfo{name: p.Base(sub), mode: mode.Perm() | fs.ModeDir, modTime: now()},
		})
	}
	return nil
}

// CreateFile creates a file at path with the content of src. The parent directory must exist.
// If the file exists and overwrite is false, an error wrapping [ErrFileExists] is returned.
// The written size is limited to maxSize, unless maxSize < 0.
func (m *TargetMemory) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	path, err := memoryPath(path)
	if err != nil {
		return 0, err
	}

	parent, ok := m.load(p.Dir(path))
	if !ok {
		return 0, fmt.Errorf("%w: %s", fs.ErrNotExist, p.Dir(path))
	}
	if !parent.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", p.Dir(path))
	}

	if me, ok := m.load(path); ok {
		if me.IsDir() {
			return 0, fmt.Errorf("is a directory: %s", path)
		}
		if !overwrite {
			return 0, fmt.Errorf("%w: %s", ErrFileExists, path)
		}
	}

	var buf bytes.Buffer
	n, err := io.Copy(limitWriter(&buf, maxSize), src)
	if err != nil {
		return n, err
	}

	m.files.Store(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: p.Base(path), size: n, mode: mode.Perm(), modTime: now()},
		Data:     buf.Bytes(),
	})
	return n, nil
}

// Chmod sets the permission bits of the entry at path.
func (m *TargetMemory) Chmod(path string, mode fs.FileMode) error {
	path, err := memoryPath(path)
	if err != nil {
		return err
	}
	me, ok := m.load(path)
	if !ok || path == "." {
		return &fs.PathError{Op: "chmod", Path: path, Err: fs.ErrNotExist}
	}

	fi := *me.FileInfo.(*MemoryFileInfo)
	fi.mode = fi.mode.Type() | (mode & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky))
	m.files.Store(path, &MemoryEntry{FileInfo: &fi, Data: me.Data})
	return nil
}

// SupportsPermissions reports true, permission bits are recorded for every entry.
func (m *TargetMemory) SupportsPermissions() bool {
	return true
}

// Lstat returns the FileInfo for the given path. If the path does not exist, an error is returned.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	path, err := memoryPath(path)
	if err != nil {
		return nil, err
	}
	if me, ok := m.load(path); ok {
		return me.FileInfo, nil
	}
	return nil, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
}

// Stat returns the FileInfo for the given path, see [TargetMemory.Lstat].
func (m *TargetMemory) Stat(path string) (fs.FileInfo, error) {
	return m.Lstat(path)
}

// Open opens the named file for reading.
func (m *TargetMemory) Open(path string) (fs.File, error) {
	path, err := memoryPath(path)
	if err != nil {
		return nil, err
	}
	me, ok := m.load(path)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	// copy, so reading does not consume the stored data
	return &MemoryEntry{FileInfo: me.FileInfo, Data: me.Data}, nil
}

// ReadFile returns the content of the file at path.
func (m *TargetMemory) ReadFile(path string) ([]byte, error) {
	path, err := memoryPath(path)
	if err != nil {
		return nil, err
	}
	me, ok := m.load(path)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	if me.IsDir() {
		return nil, fmt.Errorf("cannot read directory: %s", path)
	}
	return bytes.Clone(me.Data), nil
}

// ReadDir returns the entries of the directory at path sorted by name.
func (m *TargetMemory) ReadDir(path string) ([]fs.DirEntry, error) {
	path, err := memoryPath(path)
	if err != nil {
		return nil, err
	}

	var entries []fs.DirEntry
	m.files.Range(func(entryPath, me any) bool {
		if p.Dir(entryPath.(string)) == path {
			entries = append(entries, me.(*MemoryEntry))
		}
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// MemoryEntry is an entry in the in-memory filesystem
type MemoryEntry struct {
	FileInfo fs.FileInfo
	Data     []byte
}

func (me *MemoryEntry) Name() string {
	return me.FileInfo.Name()
}

func (me *MemoryEntry) Stat() (fs.FileInfo, error) {
	return me.FileInfo, nil
}

func (me *MemoryEntry) Read(b []byte) (int, error) {
	if len(me.Data) == 0 {
		return 0, io.EOF
	}
	n := copy(b, me.Data)
	me.Data = me.Data[n:]
	return n, nil
}

func (me *MemoryEntry) Close() error {
	return nil
}

func (me *MemoryEntry) IsDir() bool {
	return me.FileInfo.IsDir()
}

func (me *MemoryEntry) Type() fs.FileMode {
	return me.FileInfo.Mode().Type()
}

func (me *MemoryEntry) Info() (fs.FileInfo, error) {
	return me.FileInfo, nil
}

// MemoryFileInfo is a FileInfo implementation for the in-memory filesystem
type MemoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

// Name returns the name of the file
func (fi *MemoryFileInfo) Name() string {
	return fi.name
}

// Size returns the size of the file
func (fi *MemoryFileInfo) Size() int64 {
	return fi.size
}

// Mode returns the mode of the file
func (fi *MemoryFileInfo) Mode() fs.FileMode {
	return fi.mode
}

// ModTime returns the modification time of the file
func (fi *MemoryFileInfo) ModTime() time.Time {
	return fi.modTime
}

// IsDir returns true if the file is a directory
func (fi *MemoryFileInfo) IsDir() bool {
	return fi.mode.IsDir()
}

// Sys returns the underlying data source (nil for in-memory filesystem)
func (fi *MemoryFileInfo) Sys() any {
	return nil
}
