package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat              = errors.New("unknown archive format")
	ErrIncompatibleOption         = errors.New("option not supported by archive format")
	ErrPath                       = errors.New("invalid path")
	ErrSplitSizeTooSmall          = errors.New("split size is too small")
	ErrMultiInputSingleFileFormat = errors.New("format supports a single file only")
	ErrInvalidRequest             = errors.New("invalid request")
	ErrToolSpawn                  = errors.New("failed to start tool")
	ErrToolNonZeroExit            = errors.New("tool exited with non-zero status")
	ErrToolKilled                 = errors.New("tool terminated abnormally")
	ErrNoUsableTool               = errors.New("no usable tool")
)

// ExitCodeAbnormal is reported when a tool ends without an exit code, e.g. killed by a signal.
const ExitCodeAbnormal = 1

// UnknownFormatError is returned when no known suffix matches a file name.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("cannot determine archive format of %q", e.Name)
}

func (e *UnknownFormatError) Unwrap() error { return ErrUnknownFormat }

// IncompatibleOptionError is returned when an option is requested for a format that cannot honour it.
type IncompatibleOptionError struct {
	Option    string
	Format    ArchiveFormat
	Supported string
}

func (e *IncompatibleOptionError) Error() string {
	return fmt.Sprintf("`%s` only supports %s, got %s", e.Option, e.Supported, e.Format)
}

func (e *IncompatibleOptionError) Unwrap() error { return ErrIncompatibleOption }

// PathError describes an input or output path that cannot be used.
type PathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPath, e.Err}
	}
	return []error{ErrPath}
}

// ExitError carries the exit status of a tool that did not succeed.
type ExitError struct {
	Tool     Tool
	Code     int
	Signaled bool
}

func (e *ExitError) Error() string {
	if e.Signaled {
		return fmt.Sprintf("%s terminated abnormally", e.Tool)
	}
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
}

func (e *ExitError) Unwrap() error {
	if e.Signaled {
		return ErrToolKilled
	}
	return ErrToolNonZeroExit
}

// ExitCode returns the code the program should exit with for this failure.
func (e *ExitError) ExitCode() int {
	if e.Signaled {
		return ExitCodeAbnormal
	}
	return e.Code
}
