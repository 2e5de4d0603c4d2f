package types

import (
	"errors"
	"fmt"
)

var (
	ErrPathNotFound         = errors.New("path does not exist")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNotDirectory         = errors.New("not a directory")
	ErrFileRead             = errors.New("file read failed")
	ErrDecode               = errors.New("content is not valid UTF-8 text")
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	ErrRender               = errors.New("rendering failed")
)

// TraversalError reports a failure that aborts a directory traversal.
type TraversalError struct {
	Path string
	Err  error
}

func (traversalError *TraversalError) Error() string {
	return fmt.Sprintf("traversing %s: %v", traversalError.Path, traversalError.Err)
}

func (traversalError *TraversalError) Unwrap() error {
	return traversalError.Err
}

// FileError reports a failure to read or decode a file in File mode.
type FileError struct {
	Path string
	Err  error
}

func (fileError *FileError) Error() string {
	return fmt.Sprintf("reading file %s: %v", fileError.Path, fileError.Err)
}

func (fileError *FileError) Unwrap() error {
	return fileError.Err
}
