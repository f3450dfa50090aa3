// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// inputSizer is implemented by archives that know the size of their input
type inputSizer interface {
	InputSize() int64
}

// Extract materializes all entries of a below dst on t. The entries are processed in
// archive order and the first error aborts the extraction. Entries that have been
// extracted before the failing entry are kept. An empty dst or "." refers to the working
// directory of t. If cfg is nil, the default configuration is used.
//
// The returned error is an [Error], unless ctx is canceled.
func Extract(ctx context.Context, a Archive, dst string, t Target, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry data collection and emit
	td := &TelemetryData{ExtractedType: a.Type(), Entries: int64(a.Len())}
	if is, ok := a.(inputSizer); ok {
		td.InputSize = is.InputSize()
	}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	return extract(ctx, a, dst, t, cfg, td)
}

// extract runs the extraction loop of [Extract]
func extract(ctx context.Context, a Archive, dst string, t Target, cfg *Config, td *TelemetryData) error {
	cfg.Logger().Info("start extraction", "type", a.Type(), "entries", a.Len(), "dst", dst)

	perms := cfg.PermissionApplier(t)
	out := cfg.Progress()
	var extractedBytes int64

	for i := 0; i < a.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return handleError(cfg, td, err)
		}

		if err := cfg.CheckMaxFiles(int64(i + 1)); err != nil {
			return handleError(cfg, td, newError(cfg, KindFilesystem, "check max files", "", i, err))
		}

		e, err := a.Entry(i)
		if err != nil {
			return handleError(cfg, td, newError(cfg, KindArchiveFormat, "read entry", "", i, err))
		}

		// the archive layer is authoritative on path safety
		name, ok := e.EnclosedName()
		if !ok {
			cfg.Logger().Debug("skip entry without enclosed name", "index", i, "name", e.Name())
			td.SkippedEntries++
			td.LastSkippedEntry = e.Name()
			continue
		}
		path := targetPath(dst, name)

		if comment := e.Comment(); len(comment) > 0 {
			fmt.Fprintf(out, "File %d comment: %s\n", i, comment)
		}

		if isDirName(e.Name()) {
			fmt.Fprintf(out, "File %d extracted to \"%s\"\n", i, path)
			if err := createDir(t, dst, name, cfg.CustomCreateDirMode()); err != nil {
				return handleError(cfg, td, newError(cfg, KindFilesystem, "create directory", path, i, err))
			}
			td.ExtractedDirs++
		} else {
			fmt.Fprintf(out, "File %d extracted to \"%s\" (%d bytes)\n", i, path, e.Size())
			n, err := extractFile(t, dst, name, e, cfg, extractedBytes)
			extractedBytes += n
			td.ExtractionSize = extractedBytes
			if err != nil {
				return handleError(cfg, td, classifyFileError(cfg, path, i, err))
			}
			td.ExtractedFiles++
		}

		// restore permissions, if the archive recorded some
		if mode, ok := e.UnixMode(); ok {
			if err := perms.ApplyPermissions(path, mode); err != nil {
				return handleError(cfg, td, newError(cfg, KindFilesystem, "set permissions", path, i, err))
			}
			td.PermissionsApplied++
		}

		cfg.Logger().Debug("extracted entry", "index", i, "name", e.Name(), "path", path)
	}

	cfg.Logger().Info("extraction finished", "dirs", td.ExtractedDirs, "files", td.ExtractedFiles, "skipped", td.SkippedEntries)
	return nil
}

// openError marks a failure to open the content of an entry
type openError struct {
	err error
}

func (e *openError) Error() string {
	return e.err.Error()
}

func (e *openError) Unwrap() error {
	return e.err
}

// extractFile copies the content of e into the file name below dst. The already
// extracted bytes are needed to enforce the maximum extraction size.
func extractFile(t Target, dst string, name string, e Entry, cfg *Config, extracted int64) (int64, error) {
	maxSize := int64(-1)
	if cfg.MaxExtractionSize() != -1 {
		if err := cfg.CheckExtractionSize(extracted + e.Size()); err != nil {
			return 0, err
		}
		maxSize = cfg.MaxExtractionSize() - extracted
	}

	src, err := e.Open()
	if err != nil {
		return 0, &openError{err: err}
	}
	defer src.Close()

	return createFile(t, dst, name, src, cfg, maxSize)
}

// classifyFileError maps a failure of extractFile to the kind of the failure
func classifyFileError(cfg *Config, path string, index int, err error) error {
	var oe *openError
	if errors.As(err, &oe) {
		return newError(cfg, KindArchiveFormat, "open entry", path, index, oe.err)
	}

	var de *decodeError
	if errors.As(err, &de) {
		return newError(cfg, KindArchiveFormat, "read entry", path, index, err)
	}

	return newError(cfg, KindFilesystem, "create file", path, index, err)
}

// handleError increases the error counter and sets the latest error
func handleError(cfg *Config, td *TelemetryData, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = err
	cfg.Logger().Debug("extraction aborted", "error", err)
	return err
}

// UnpackFile opens the zip archive at path and extracts it below dst on t. See [Extract].
func UnpackFile(ctx context.Context, path string, dst string, t Target, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	za, closer, err := OpenZipFile(path, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	return Extract(ctx, za, dst, t, cfg)
}

// UnpackReader extracts the zip archive provided by r with the given size. See [Extract].
func UnpackReader(ctx context.Context, r io.ReaderAt, size int64, dst string, t Target, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	za, err := OpenZip(r, size, cfg)
	if err != nil {
		return err
	}
	return Extract(ctx, za, dst, t, cfg)
}
