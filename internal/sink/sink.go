// Package sink delivers a fully rendered artifact to its destinations.
package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/sdir/internal/services/clipboard"
	"github.com/temirov/sdir/internal/types"
)

const (
	warningOptionalSinkFormat = "%s: %v"
	errorRequiredSinkFormat   = "%w: writing to %s: %w"
)

// Artifact is one complete rendering. Styled carries terminal escape codes and may be empty,
// in which case Plain is used everywhere.
type Artifact struct {
	Plain  string
	Styled string
}

// Sink receives an artifact exactly once.
type Sink interface {
	Name() string
	Write(artifact Artifact) error
}

// WriterSink writes the styled form of an artifact to an io.Writer such as standard output.
type WriterSink struct {
	name   string
	writer io.Writer
	styled bool
}

// NewWriterSink constructs a WriterSink. When styled is false the plain form is written.
func NewWriterSink(name string, writer io.Writer, styled bool) *WriterSink {
	return &WriterSink{name: name, writer: writer, styled: styled}
}

// Name identifies the sink in warnings.
func (writerSink *WriterSink) Name() string {
	return writerSink.name
}

// Write emits the artifact verbatim.
func (writerSink *WriterSink) Write(artifact Artifact) error {
	text := artifact.Plain
	if writerSink.styled && artifact.Styled != "" {
		text = artifact.Styled
	}
	_, writeError := io.WriteString(writerSink.writer, text)
	return writeError
}

// ClipboardSink copies the plain form of an artifact.
type ClipboardSink struct {
	copier clipboard.Copier
}

// NewClipboardSink constructs a ClipboardSink backed by copier.
func NewClipboardSink(copier clipboard.Copier) *ClipboardSink {
	return &ClipboardSink{copier: copier}
}

// Name identifies the sink in warnings.
func (clipboardSink *ClipboardSink) Name() string {
	return "clipboard"
}

// Write copies the plain artifact.
func (clipboardSink *ClipboardSink) Write(artifact Artifact) error {
	if clipboardSink.copier == nil {
		return types.ErrClipboardUnavailable
	}
	return clipboardSink.copier.Copy(artifact.Plain)
}

// MemorySink records every artifact it receives.
type MemorySink struct {
	mutex     sync.Mutex
	name      string
	artifacts []Artifact
}

// NewMemorySink constructs an empty MemorySink.
func NewMemorySink(name string) *MemorySink {
	return &MemorySink{name: name}
}

// Name identifies the sink in warnings.
func (memorySink *MemorySink) Name() string {
	return memorySink.name
}

// Write records the artifact.
func (memorySink *MemorySink) Write(artifact Artifact) error {
	memorySink.mutex.Lock()
	defer memorySink.mutex.Unlock()
	memorySink.artifacts = append(memorySink.artifacts, artifact)
	return nil
}

// Artifacts returns a copy of the recorded artifacts.
func (memorySink *MemorySink) Artifacts() []Artifact {
	memorySink.mutex.Lock()
	defer memorySink.mutex.Unlock()
	return append([]Artifact(nil), memorySink.artifacts...)
}

// Plain returns the plain text of every recorded artifact joined together.
func (memorySink *MemorySink) Plain() string {
	var builder strings.Builder
	for _, artifact := range memorySink.Artifacts() {
		builder.WriteString(artifact.Plain)
	}
	return builder.String()
}

// Fanout writes one artifact to required and optional sinks. A required sink failure is returned;
// an optional sink failure is logged as a warning.
type Fanout struct {
	required []Sink
	optional []Sink
	logger   *zap.Logger
}

// NewFanout constructs a Fanout. A nil logger discards warnings.
func NewFanout(logger *zap.Logger) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{logger: logger}
}

// AddRequired registers a sink whose failure fails the write.
func (fanout *Fanout) AddRequired(sink Sink) *Fanout {
	fanout.required = append(fanout.required, sink)
	return fanout
}

// AddOptional registers a sink whose failure only produces a warning.
func (fanout *Fanout) AddOptional(sink Sink) *Fanout {
	fanout.optional = append(fanout.optional, sink)
	return fanout
}

// Deliver hands the finished artifact to every sink concurrently and waits for all of them.
// It returns the optional sink failures and the first required sink failure.
func (fanout *Fanout) Deliver(artifact Artifact) ([]error, error) {
	var group errgroup.Group
	optionalErrors := make([]error, len(fanout.optional))

	for _, requiredSink := range fanout.required {
		requiredSink := requiredSink
		group.Go(func() error {
			if writeError := requiredSink.Write(artifact); writeError != nil {
				return fmt.Errorf(errorRequiredSinkFormat, types.ErrRender, requiredSink.Name(), writeError)
			}
			return nil
		})
	}
	for index, optionalSink := range fanout.optional {
		index, optionalSink := index, optionalSink
		group.Go(func() error {
			optionalErrors[index] = optionalSink.Write(artifact)
			return nil
		})
	}
	requiredError := group.Wait()

	var warnings []error
	for index, optionalError := range optionalErrors {
		if optionalError == nil {
			continue
		}
		fanout.logger.Warn(fmt.Sprintf(warningOptionalSinkFormat, fanout.optional[index].Name(), optionalError))
		warnings = append(warnings, optionalError)
	}
	return warnings, requiredError
}
