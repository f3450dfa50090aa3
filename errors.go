// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unzip

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an extraction failure.
type Kind int

const (
	// KindUnknown is returned by [KindOf] for errors that were not produced by this package.
	KindUnknown Kind = iota

	// KindArgument marks a missing or invalid invocation argument.
	KindArgument

	// KindOpen marks an archive that does not exist or cannot be opened for reading.
	KindOpen

	// KindArchiveFormat marks an invalid container, or an entry whose metadata or
	// content cannot be decoded.
	KindArchiveFormat

	// KindFilesystem marks a failure while creating a directory or file, writing
	// bytes or setting permissions.
	KindFilesystem
)

// String returns the generic message of the kind.
func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "argument error"
	case KindOpen:
		return "open error"
	case KindArchiveFormat:
		return "archive format error"
	case KindFilesystem:
		return "filesystem error"
	default:
		return "unknown error"
	}
}

var (
	// ErrMaxFilesExceeded indicates that the maximum number of entries is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size of all extracted
	// bytes is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded indicates that the archive is larger than the maximum input size.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")

	// ErrFileExists indicates that a file exists in the destination and overwriting is disabled.
	ErrFileExists = errors.New("file already exists")
)

// ErrorPolicy decides how much detail an [Error] reveals in its message.
type ErrorPolicy int

const (
	// ErrorPolicyDescriptive reports the failed operation, the path and the cause.
	ErrorPolicyDescriptive ErrorPolicy = iota

	// ErrorPolicyGeneric reports only the generic message of the error kind.
	// The cause is still reachable with errors.Is and errors.As.
	ErrorPolicyGeneric
)

// Error is the error returned by an aborted extraction.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Op is the operation that failed, e.g. "create directory".
	Op string

	// Path is the affected path, if any.
	Path string

	// Index is the archive index of the failing entry, or -1.
	Index int

	// Err is the underlying cause.
	Err error

	policy ErrorPolicy
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.policy == ErrorPolicyGeneric {
		return e.Kind.String()
	}

	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Index >= 0 {
		fmt.Fprintf(&sb, " (entry %d)", e.Index)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&sb, " %q", e.Path)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the [Kind] of the first [Error] in the chain of err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// newError creates an [Error] that follows the error policy of cfg.
func newError(cfg *Config, kind Kind, op string, path string, index int, err error) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Path:   path,
		Index:  index,
		Err:    err,
		policy: cfg.ErrorPolicy(),
	}
}
