package domain

import (
	"errors"
	"fmt"
)

// Structural errors. They abort the current conversion and are raised at the
// point of detection.
var (
	ErrUnknownType              = errors.New("unknown type")
	ErrUnsupportedRank          = errors.New("unsupported array rank")
	ErrVariableCountMismatch    = errors.New("variable count mismatch")
	ErrMissingRequiredDimension = errors.New("missing required dimension")
	ErrParse                    = errors.New("parse error")
	ErrMissingCoordinateData    = errors.New("missing coordinate data")
	ErrNotFound                 = errors.New("not found")
	ErrMalformedInput           = errors.New("malformed input")
)

// UnsupportedRankError reports an array whose rank is not one of Allowed.
type UnsupportedRankError struct {
	Rank    int
	Allowed []int
}

func (e *UnsupportedRankError) Error() string {
	return fmt.Sprintf("array rank %d is not supported (allowed ranks: %v)", e.Rank, e.Allowed)
}

func (e *UnsupportedRankError) Unwrap() error { return ErrUnsupportedRank }

// VariableCountMismatchError reports a disagreement between the number of
// declared data variables and the variable axis of the array.
type VariableCountMismatchError struct {
	Declared int
	Array    int
}

func (e *VariableCountMismatchError) Error() string {
	return fmt.Sprintf("inconsistent number of data variables: array has %d, schema declares %d", e.Array, e.Declared)
}

func (e *VariableCountMismatchError) Unwrap() error { return ErrVariableCountMismatch }

// ParseError reports a coordinate token that cannot be represented in DType.
type ParseError struct {
	Tag   string
	Token string
	DType DType
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("coordinate value %q at tag %q could not be parsed as %s: %v", e.Token, e.Tag, e.DType, e.Err)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// MissingCoordinateDataError reports a coordinate record with neither
// min/max nor explicit values.
type MissingCoordinateDataError struct {
	Tag string
}

func (e *MissingCoordinateDataError) Error() string {
	return fmt.Sprintf("no coordinate values found for tag %q", e.Tag)
}

func (e *MissingCoordinateDataError) Unwrap() error { return ErrMissingCoordinateData }

// FileError distinguishes a missing file from a malformed one at open time.
type FileError struct {
	Path string
	Kind error // ErrNotFound or ErrMalformedInput.
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound builds a FileError of kind ErrNotFound.
func NotFound(path string, err error) error {
	return &FileError{Path: path, Kind: ErrNotFound, Err: err}
}

// Malformed builds a FileError of kind ErrMalformedInput.
func Malformed(path string, err error) error {
	return &FileError{Path: path, Kind: ErrMalformedInput, Err: err}
}
