// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package unzip

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// posixPermissions reports if the platform filesystem exposes posix permission bits
const posixPermissions = true

// Chmod changes the permission bits of the named file to mode.
func (d *TargetDisk) Chmod(name string, mode fs.FileMode) error {
	if err := unix.Chmod(name, unixPerm(mode)); err != nil {
		return &fs.PathError{Op: "chmod", Path: name, Err: err}
	}
	return nil
}

// unixPerm converts the permission and special bits of mode to the unix
// representation.
func unixPerm(mode fs.FileMode) uint32 {
	perm := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		perm |= unix.S_ISUID
	}
	if mode&fs.ModeSetgid != 0 {
		perm |= unix.S_ISGID
	}
	if mode&fs.ModeSticky != 0 {
		perm |= unix.S_ISVTX
	}
	return perm
}
