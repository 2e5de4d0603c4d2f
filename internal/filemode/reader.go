// Package filemode reads single files for File mode output and for content embedding.
package filemode

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/sdir/internal/types"
	"github.com/temirov/sdir/internal/utils"
)

const (
	errorAbsolutePathFormat = "resolving %s: %w"
	displayLineBreak        = "\n"
)

// Result is a file read in File mode.
type Result struct {
	DisplayPath string
	Content     string
}

// Format returns the display path, a line break, and the content verbatim.
func (result Result) Format() string {
	return result.DisplayPath + displayLineBreak + result.Content
}

// ReadFile reads the file at path and computes its display path relative to workingDirectory.
// Failures are returned as *types.FileError wrapping types.ErrPathNotFound, types.ErrPermissionDenied,
// types.ErrFileRead or types.ErrDecode.
func ReadFile(path string, workingDirectory string) (Result, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return Result{}, &types.FileError{Path: path, Err: fmt.Errorf(errorAbsolutePathFormat, path, absoluteError)}
	}

	fileBytes, readError := os.ReadFile(absolutePath)
	if readError != nil {
		return Result{}, &types.FileError{Path: path, Err: classifyReadError(readError)}
	}

	content, decoded := utils.DecodeText(fileBytes)
	if !decoded {
		return Result{}, &types.FileError{Path: path, Err: types.ErrDecode}
	}

	return Result{
		DisplayPath: displayPathFor(absolutePath, workingDirectory),
		Content:     content,
	}, nil
}

// ReadContent returns the text of the file at absolutePath or types.UnreadableContentMarker
// when it cannot be read or decoded. The error is returned for logging only.
func ReadContent(absolutePath string) (string, error) {
	fileBytes, readError := os.ReadFile(absolutePath)
	if readError != nil {
		return types.UnreadableContentMarker, classifyReadError(readError)
	}
	content, decoded := utils.DecodeText(fileBytes)
	if !decoded {
		return types.UnreadableContentMarker, types.ErrDecode
	}
	return content, nil
}

func displayPathFor(absolutePath string, workingDirectory string) string {
	if workingDirectory == "" {
		return utils.DisplayPath(filepath.Base(absolutePath))
	}
	relativePath := utils.RelativePathOrSelf(absolutePath, workingDirectory)
	if filepath.IsAbs(filepath.FromSlash(relativePath)) {
		return utils.DisplayPath(filepath.Base(absolutePath))
	}
	return utils.DisplayPath(relativePath)
}

func classifyReadError(readError error) error {
	switch {
	case errors.Is(readError, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", types.ErrPathNotFound, readError)
	case errors.Is(readError, fs.ErrPermission):
		return fmt.Errorf("%w: %w", types.ErrPermissionDenied, readError)
	default:
		return fmt.Errorf("%w: %w", types.ErrFileRead, readError)
	}
}
