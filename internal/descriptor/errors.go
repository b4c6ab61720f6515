package descriptor

import (
	"errors"
	"fmt"
)

// MissingFileError indicates an expected descriptor file does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("expected descriptor file missing: %s", e.Path)
}

// EmptyDescriptorError indicates a descriptor exists but holds no content.
type EmptyDescriptorError struct {
	Path string
}

func (e *EmptyDescriptorError) Error() string {
	return fmt.Sprintf("descriptor is empty: %s", e.Path)
}

// MalformedDescriptorError indicates a descriptor exists but cannot be used.
type MalformedDescriptorError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedDescriptorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed descriptor %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed descriptor %s: %s", e.Path, e.Reason)
}

func (e *MalformedDescriptorError) Unwrap() error {
	return e.Err
}

// IsMissingFile returns true if err is or wraps a MissingFileError.
func IsMissingFile(err error) bool {
	var target *MissingFileError
	return errors.As(err, &target)
}

// IsEmpty returns true if err is or wraps an EmptyDescriptorError.
func IsEmpty(err error) bool {
	var target *EmptyDescriptorError
	return errors.As(err, &target)
}

// IsMalformed returns true if err is or wraps a MalformedDescriptorError.
func IsMalformed(err error) bool {
	var target *MalformedDescriptorError
	return errors.As(err, &target)
}
