// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package unzip

import (
	"fmt"
	"io/fs"
	"runtime"
)

// posixPermissions reports if the platform filesystem exposes posix permission bits
const posixPermissions = false

// Chmod is not supported on this platform. The extraction does not call it, because
// [TargetDisk.SupportsPermissions] reports false.
func (d *TargetDisk) Chmod(name string, mode fs.FileMode) error {
	return fmt.Errorf("Chmod is not supported on this platform (%s)", runtime.GOOS)
}
