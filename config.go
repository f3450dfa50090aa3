// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// logger is an interface that defines the logging functions
// that are used by the extractor
type logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config holds all configuration options for the extraction process. The options
// are adjusted using the option pattern style.
//
// The default configuration extracts like the classic unzip loop: files are
// overwritten, no limits are enforced and permissions are restored where the target
// supports them.
type Config struct {
	// customCreateDirMode is the file mode for created directories (respecting umask)
	customCreateDirMode fs.FileMode

	// customCreateFileMode is the file mode for created files before permissions
	// of the entry are restored (respecting umask)
	customCreateFileMode fs.FileMode

	// errorPolicy decides how descriptive returned errors are
	errorPolicy ErrorPolicy

	// logger stream for extraction
	logger logger

	// maxExtractionSize is the maximum number of bytes written over all files.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum number of entries (including directories) in an archive.
	// Set value to -1 to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of the archive.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// overwrite defines if existing files in the destination are overwritten
	overwrite bool

	// permissionApplier restores entry permissions; nil selects one based on the target
	permissionApplier PermissionApplier

	// progress receives the per entry narration
	progress io.Writer

	// telemetryHook is a function to consume telemetry data after finished extraction
	// Important: do not adjust this value after extraction started
	telemetryHook TelemetryHook
}

const (
	defaultCustomCreateDirMode  = 0777                   // rwxrwxrwx, umask applies
	defaultCustomCreateFileMode = 0666                   // rw-rw-rw-, umask applies
	defaultErrorPolicy          = ErrorPolicyDescriptive // report op, path and cause
	defaultMaxExtractionSize    = -1                     // no limit
	defaultMaxFiles             = -1                     // no limit
	defaultMaxInputSize         = -1                     // no limit
	defaultOverwrite            = true                   // overwrite existing files
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		customCreateDirMode:  defaultCustomCreateDirMode,
		customCreateFileMode: defaultCustomCreateFileMode,
		errorPolicy:          defaultErrorPolicy,
		logger:               defaultLogger,
		maxExtractionSize:    defaultMaxExtractionSize,
		maxFiles:             defaultMaxFiles,
		maxInputSize:         defaultMaxInputSize,
		overwrite:            defaultOverwrite,
		progress:             io.Discard,
		telemetryHook:        defaultTelemetryHook,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {
	if c.MaxFiles() == -1 {
		return nil
	}
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if size exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(size int64) error {
	if c.MaxExtractionSize() == -1 {
		return nil
	}
	if size > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// CheckInputSize checks if size exceeds the configured maximum input size. If the maximum
// is exceeded, a [ErrMaxInputSizeExceeded] error is returned.
func (c *Config) CheckInputSize(size int64) error {
	if c.MaxInputSize() == -1 {
		return nil
	}
	if size > c.MaxInputSize() {
		return ErrMaxInputSizeExceeded
	}
	return nil
}

// CustomCreateDirMode returns the file mode for created directories. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomCreateFileMode returns the file mode for created files. (respecting umask)
func (c *Config) CustomCreateFileMode() fs.FileMode {
	return c.customCreateFileMode
}

// ErrorPolicy returns the policy that decides how descriptive errors are.
func (c *Config) ErrorPolicy() ErrorPolicy {
	return c.errorPolicy
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum number of bytes written over all files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum number of entries (including directories) in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of the archive.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// PermissionApplier returns the configured [PermissionApplier] or, if none is
// configured, the default applier for t.
func (c *Config) PermissionApplier(t Target) PermissionApplier {
	if c.permissionApplier != nil {
		return c.permissionApplier
	}
	return NewPermissionApplier(t)
}

// Progress returns the writer that receives the per entry narration.
func (c *Config) Progress() io.Writer {
	return c.progress
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

// WithCustomCreateDirMode options pattern function to set the file mode for created
// directories. Recorded permissions of an entry are applied afterwards.
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomCreateFileMode options pattern function to set the file mode for created
// files. Recorded permissions of an entry are applied afterwards.
func WithCustomCreateFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateFileMode = mode
	}
}

// WithErrorPolicy options pattern function to choose between descriptive and generic
// error messages.
func WithErrorPolicy(policy ErrorPolicy) ConfigOption {
	return func(c *Config) {
		c.errorPolicy = policy
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set the maximum number of bytes
// written over all files. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set the maximum number of extracted entries,
// directories included. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set the maximum size of the archive. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function to specify if files should be overwritten in the
// destination. If disabled, an existing file aborts the extraction.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPermissionApplier options pattern function to replace the [PermissionApplier]
// that is derived from the target.
func WithPermissionApplier(p PermissionApplier) ConfigOption {
	return func(c *Config) {
		c.permissionApplier = p
	}
}

// WithProgress options pattern function to set the writer for the per entry narration.
func WithProgress(w io.Writer) ConfigOption {
	return func(c *Config) {
		if w == nil {
			w = io.Discard
		}
		c.progress = w
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
