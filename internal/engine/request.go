package engine

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MinSplitSize is the smallest volume size accepted for split archives.
const MinSplitSize = 64 * 1024

// CompressionLevel selects the speed/size trade-off passed to a tool.
type CompressionLevel int

const (
	LevelDefault CompressionLevel = iota
	LevelBest
	LevelFast
)

func (l CompressionLevel) String() string {
	switch l {
	case LevelBest:
		return "best"
	case LevelFast:
		return "fast"
	default:
		return "default"
	}
}

// Operation is either archiving or extracting.
type Operation int

const (
	OperationArchive Operation = iota
	OperationExtract
)

func (o Operation) String() string {
	if o == OperationExtract {
		return "extract"
	}
	return "archive"
}

// ArchiveRequest describes one archive invocation.
type ArchiveRequest struct {
	Inputs []string `validate:"min=1,dive,required"`
	// Output defaults to <cwd>/<first input name>.rar when empty.
	Output string
	// Password is nil when no password is wanted. An empty string asks for one interactively.
	Password       *string
	SplitSize      *uint64
	RecoveryRecord *int `validate:"omitempty,min=1,max=100"`
	Level          CompressionLevel
	Threads        int `validate:"min=1"`
	SingleThread   bool
	Quiet          bool
}

// ExtractRequest describes one extract invocation.
type ExtractRequest struct {
	Input string `validate:"required"`
	// Output defaults to the current working directory when empty.
	Output       string
	Password     *string
	Threads      int `validate:"min=1"`
	SingleThread bool
	Quiet        bool
}

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request fields that do not depend on the archive format.
func (r ArchiveRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Validate checks the request fields that do not depend on the archive format.
func (r ExtractRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Input is an archive input after it has been located on disk.
type Input struct {
	Path  string
	IsDir bool
}

// CheckArchiveOptions verifies that the request options are compatible with format and that
// single-file formats receive exactly one regular file.
func CheckArchiveOptions(format ArchiveFormat, req ArchiveRequest, inputs []Input) error {
	if req.Password != nil && !format.SupportsPassword() {
		return &IncompatibleOptionError{Option: "password", Format: format, Supported: "7Z, ZIP and RAR"}
	}

	if req.SplitSize != nil {
		if !format.SupportsSplit() {
			return &IncompatibleOptionError{Option: "split", Format: format, Supported: "7Z, ZIP and RAR"}
		}
		if *req.SplitSize < MinSplitSize {
			return fmt.Errorf("%w: %d bytes, the minimum is %d", ErrSplitSizeTooSmall, *req.SplitSize, MinSplitSize)
		}
	}

	if req.RecoveryRecord != nil && !format.SupportsRecoveryRecord() {
		return &IncompatibleOptionError{Option: "recovery-record", Format: format, Supported: "RAR"}
	}

	if format.SingleFile() && (len(inputs) != 1 || inputs[0].IsDir) {
		return fmt.Errorf("%w: use %s for the filename extension to support multiple files or directories",
			ErrMultiInputSingleFileFormat, format.TarCounterpart())
	}

	return nil
}

// CheckExtractOptions verifies that the request options are compatible with format.
func CheckExtractOptions(format ArchiveFormat, req ExtractRequest) error {
	if req.Password != nil && !format.SupportsPassword() {
		return &IncompatibleOptionError{Option: "password", Format: format, Supported: "7Z, ZIP and RAR"}
	}
	return nil
}
