// Package clipboard provides access to the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/temirov/sdir/internal/types"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard. Failures wrap types.ErrClipboardUnavailable.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return types.ErrClipboardUnavailable
	}
	if writeError := clipboard.WriteAll(text); writeError != nil {
		return fmt.Errorf("%w: %w", types.ErrClipboardUnavailable, writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
