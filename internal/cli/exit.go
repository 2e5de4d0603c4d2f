package cli

import (
	"errors"

	"github.com/temirov/sdir/internal/types"
)

// Process exit codes.
const (
	ExitSuccess        = 0
	ExitUsage          = 1
	ExitPathResolution = 2
	ExitFileRead       = 3
	ExitOutput         = 4
)

// usageError marks invalid flags, arguments or configuration files.
type usageError struct {
	err error
}

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func (failure *usageError) Error() string {
	return failure.err.Error()
}

func (failure *usageError) Unwrap() error {
	return failure.err
}

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usageFailure *usageError
	if errors.As(err, &usageFailure) {
		return ExitUsage
	}
	var fileFailure *types.FileError
	if errors.As(err, &fileFailure) {
		return ExitFileRead
	}
	var traversalFailure *types.TraversalError
	if errors.As(err, &traversalFailure) {
		return ExitPathResolution
	}
	if errors.Is(err, types.ErrRender) {
		return ExitOutput
	}
	return ExitUsage
}

// unwrapTraversal strips a *types.TraversalError so it can be re-reported under the path the user typed.
func unwrapTraversal(err error) error {
	var traversalFailure *types.TraversalError
	if errors.As(err, &traversalFailure) {
		return traversalFailure.Err
	}
	return err
}
