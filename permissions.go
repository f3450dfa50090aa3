// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import "io/fs"

// PermissionApplier restores the recorded permission bits of an entry on the
// just created filesystem object.
type PermissionApplier interface {
	ApplyPermissions(path string, mode fs.FileMode) error
}

// permissionAware is implemented by targets that know if they expose posix
// permission bits.
type permissionAware interface {
	SupportsPermissions() bool
}

// NewPermissionApplier returns an applier that changes the mode with t.Chmod, if t
// reports support for posix permission bits. Otherwise, the returned applier does nothing.
func NewPermissionApplier(t Target) PermissionApplier {
	if pa, ok := t.(permissionAware); ok && !pa.SupportsPermissions() {
		return NoopPermissionApplier{}
	}
	return &ChmodPermissionApplier{Target: t}
}

// ChmodPermissionApplier applies permissions with [Target.Chmod].
type ChmodPermissionApplier struct {
	Target Target
}

// ApplyPermissions changes the mode of path.
func (c *ChmodPermissionApplier) ApplyPermissions(path string, mode fs.FileMode) error {
	return c.Target.Chmod(path, mode)
}

// NoopPermissionApplier ignores permissions, e.g. on filesystems without posix permission bits.
type NoopPermissionApplier struct{}

// ApplyPermissions does nothing.
func (NoopPermissionApplier) ApplyPermissions(string, fs.FileMode) error {
	return nil
}
