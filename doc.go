// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package unzip extracts the entries of a zip archive to a filesystem target.
//
// Entries are processed strictly in archive order. Directories are created with all
// missing ancestors, files are created (or truncated and overwritten) and filled with
// the decompressed entry content, and recorded unix permission bits are restored on
// targets that support them. The first error aborts the extraction; entries that were
// already written stay on the target.
//
// The archive is read through the [Archive] interface, which is implemented by
// [ZipArchive]. Entry names are sanitized by the archive layer: an entry without an
// enclosed name is skipped without error. The filesystem is reached through the [Target]
// interface, implemented by [TargetDisk] and [TargetMemory].
//
// Configuration is done using the [Config] and its option functions. Telemetry data is
// captured during the extraction and handed to the [TelemetryHook] once the extraction
// has finished.
package unzip
