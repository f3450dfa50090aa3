// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip_test

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	unzip "github.com/hashicorp/go-unzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetMemoryCreateDir(t *testing.T) {
	tm := unzip.NewTargetMemory()
	require.NoError(t, tm.CreateDir("a/b/c", 0750))

	for _, path := range []string{"a", "a/b", "a/b/c"} {
		stat, err := tm.Lstat(path)
		require.NoError(t, err)
		assert.True(t, stat.IsDir(), path)
		assert.Equal(t, fs.FileMode(0750), stat.Mode().Perm(), path)
	}

	// the working directory always exists
	require.NoError(t, tm.CreateDir(".", 0755))
	stat, err := tm.Lstat(".")
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestTargetMemoryCreateDirThroughFile(t *testing.T) {
	tm := unzip.NewTargetMemory()
	_, err := tm.CreateFile("file", strings.NewReader("data"), 0644, false, -1)
	require.NoError(t, err)

	assert.Error(t, tm.CreateDir("file", 0755))
	assert.Error(t, tm.CreateDir("file/sub", 0755))
}

func TestTargetMemoryCreateFile(t *testing.T) {
	tm := unzip.NewTargetMemory()

	// parent must exist
	_, err := tm.CreateFile("missing/file", strings.NewReader("data"), 0644, false, -1)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	n, err := tm.CreateFile("file", strings.NewReader("data"), 0640, false, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	stat, err := tm.Lstat("file")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0640), stat.Mode())
	assert.Equal(t, int64(4), stat.Size())

	_, err = tm.CreateFile("file", strings.NewReader("other"), 0640, false, -1)
	assert.ErrorIs(t, err, unzip.ErrFileExists)

	_, err = tm.CreateFile("file", strings.NewReader("other"), 0640, true, -1)
	require.NoError(t, err)
	content, err := tm.ReadFile("file")
	require.NoError(t, err)
	assert.Equal(t, "other", string(content))

	// invalid paths are rejected
	_, err = tm.CreateFile("../file", strings.NewReader("data"), 0640, true, -1)
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestTargetMemoryCreateFileLimit(t *testing.T) {
	tm := unzip.NewTargetMemory()
	n, err := tm.CreateFile("file", strings.NewReader("0123456789"), 0644, false, 5)
	assert.ErrorIs(t, err, unzip.ErrMaxExtractionSizeExceeded)
	assert.Equal(t, int64(5), n)

	_, err = tm.Lstat("file")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestTargetMemoryChmod(t *testing.T) {
	tm := unzip.NewTargetMemory()
	require.NoError(t, tm.CreateDir("dir", 0755))
	_, err := tm.CreateFile("dir/file", strings.NewReader("data"), 0644, false, -1)
	require.NoError(t, err)

	require.NoError(t, tm.Chmod("dir", 0700))
	require.NoError(t, tm.Chmod("dir/file", 0755|fs.ModeSetuid))

	stat, err := tm.Lstat("dir")
	require.NoError(t, err)
	assert.Equal(t, fs.ModeDir|0700, stat.Mode())

	stat, err = tm.Lstat("dir/file")
	require.NoError(t, err)
	assert.Equal(t, 0755|fs.ModeSetuid, stat.Mode())

	// content survives the mode change
	content, err := tm.ReadFile("dir/file")
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	assert.ErrorIs(t, tm.Chmod("missing", 0644), fs.ErrNotExist)
}

func TestTargetMemoryReadDir(t *testing.T) {
	tm := unzip.NewTargetMemory()
	require.NoError(t, tm.CreateDir("dir/sub", 0755))
	for _, name := range []string{"dir/b", "dir/a", "c"} {
		_, err := tm.CreateFile(name, strings.NewReader(name), 0644, false, -1)
		require.NoError(t, err)
	}

	entries, err := tm.ReadDir("dir")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a", "b", "sub"}, names)

	entries, err = tm.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Name())
	assert.Equal(t, "dir", entries[1].Name())
	assert.True(t, entries[1].IsDir())
}

func TestTargetMemoryOpen(t *testing.T) {
	tm := unzip.NewTargetMemory()
	_, err := tm.CreateFile("file", strings.NewReader("data"), 0644, false, -1)
	require.NoError(t, err)

	// reading twice returns the same content
	for i := 0; i < 2; i++ {
		f, err := tm.Open("file")
		require.NoError(t, err)
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "data", string(content))
		require.NoError(t, f.Close())
	}

	_, err = tm.Open("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = tm.ReadFile(".")
	assert.Error(t, err)
}
