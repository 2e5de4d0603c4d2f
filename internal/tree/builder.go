// Package tree classifies filesystem paths and builds the filtered, ordered directory tree.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/sdir/internal/config"
	"github.com/temirov/sdir/internal/filemode"
	"github.com/temirov/sdir/internal/filter"
	"github.com/temirov/sdir/internal/types"
	"github.com/temirov/sdir/internal/utils"
)

const (
	// warningSkipSubdirFormat is used when a subdirectory cannot be read.
	warningSkipSubdirFormat = "skipping contents of %s: %v"
	// warningIgnoreFileFormat is used when an ignore file cannot be loaded.
	warningIgnoreFileFormat = "ignoring unreadable ignore rules in %s: %v"
	// warningContentFormat is used when an embedded file cannot be read.
	warningContentFormat = "embedding %s: %v"

	errorAbsolutePathFormat = "getting absolute path for %s: %w"
)

// ContentReader returns the embedded content of a file.
type ContentReader func(absolutePath string) (string, error)

// Builder walks a directory once and produces its tree under a fixed configuration.
type Builder struct {
	configuration types.Configuration
	policy        filter.Policy
	logger        *zap.Logger
	readContent   ContentReader
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithLogger routes traversal warnings to logger.
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(builder *Builder) {
		if logger != nil {
			builder.logger = logger
		}
	}
}

// WithContentReader replaces the reader used for content embedding.
func WithContentReader(reader ContentReader) BuilderOption {
	return func(builder *Builder) {
		if reader != nil {
			builder.readContent = reader
		}
	}
}

// NewBuilder constructs a Builder for configuration.
func NewBuilder(configuration types.Configuration, options ...BuilderOption) *Builder {
	builder := &Builder{
		configuration: configuration,
		policy:        filter.NewPolicy(configuration, nil),
		logger:        zap.NewNop(),
		readContent:   filemode.ReadContent,
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

// Classify resolves path and reports it as a file or directory entry at depth zero.
// A symlink given as the path itself is followed.
func Classify(path string) (types.Entry, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return types.Entry{}, &types.TraversalError{Path: path, Err: fmt.Errorf(errorAbsolutePathFormat, path, absoluteError)}
	}
	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return types.Entry{}, &types.TraversalError{Path: path, Err: classifyAccessError(statError)}
	}
	kind := types.KindFile
	if fileInfo.IsDir() {
		kind = types.KindDirectory
	}
	return types.Entry{
		Name:         filepath.Base(absolutePath),
		RelativePath: types.RootRelativePath,
		AbsolutePath: absolutePath,
		Kind:         kind,
		Depth:        0,
	}, nil
}

// Build walks rootPath and returns the root node. Failures on the root itself abort the walk;
// unreadable descendants are reported on their node and the walk continues.
func (builder *Builder) Build(rootPath string) (*types.TreeNode, error) {
	rootEntry, classifyError := Classify(rootPath)
	if classifyError != nil {
		return nil, classifyError
	}
	if !rootEntry.IsDir() {
		return nil, &types.TraversalError{Path: rootPath, Err: types.ErrNotDirectory}
	}

	directoryEntries, readError := os.ReadDir(rootEntry.AbsolutePath)
	if readError != nil {
		return nil, &types.TraversalError{Path: rootPath, Err: classifyAccessError(readError)}
	}

	rules, rulesError := config.NewIgnoreRules(rootEntry.AbsolutePath, builder.ignoreOptions())
	if rulesError != nil {
		builder.logger.Warn(fmt.Sprintf(warningIgnoreFileFormat, rootEntry.AbsolutePath, rulesError))
	}

	rootNode := &types.TreeNode{Entry: rootEntry, Children: []*types.TreeNode{}}
	if builder.configuration.DepthAllowsExpansion(rootEntry.Depth) {
		rootNode.Children = builder.buildChildren(rootEntry, rules, directoryEntries)
	}
	return rootNode, nil
}

func (builder *Builder) ignoreOptions() config.IgnoreOptions {
	return config.IgnoreOptions{
		ExclusionPatterns: builder.configuration.ExclusionPatterns,
		UseGitignore:      builder.configuration.UseGitignore,
		UseIgnoreFile:     builder.configuration.UseIgnoreFile,
		IncludeGit:        builder.configuration.IncludeGit,
		Warn: func(message string) {
			builder.logger.Warn(message)
		},
	}
}

// buildChildren filters, expands and sorts the entries of one directory.
func (builder *Builder) buildChildren(parent types.Entry, rules config.IgnoreRules, directoryEntries []os.DirEntry) []*types.TreeNode {
	policy := builder.policy.WithIgnore(rules)
	children := make([]*types.TreeNode, 0, len(directoryEntries))

	for _, directoryEntry := range directoryEntries {
		entry := classifyChild(parent, directoryEntry)
		if !filter.IsVisible(entry, policy) {
			continue
		}

		node := &types.TreeNode{Entry: entry}
		if entry.IsDir() {
			node.Children = []*types.TreeNode{}
			if builder.configuration.DepthAllowsExpansion(entry.Depth) {
				builder.expandDirectory(node, rules)
			}
		} else if builder.configuration.EmbedContent {
			content, contentError := builder.readContent(entry.AbsolutePath)
			if contentError != nil {
				builder.logger.Warn(fmt.Sprintf(warningContentFormat, entry.RelativePath, contentError))
				content = types.UnreadableContentMarker
			}
			node.Content = &content
		}
		children = append(children, node)
	}

	sortNodes(children)
	return children
}

func (builder *Builder) expandDirectory(node *types.TreeNode, parentRules config.IgnoreRules) {
	directoryEntries, readError := os.ReadDir(node.AbsolutePath)
	if readError != nil {
		node.Error = describeAccessError(readError)
		builder.logger.Warn(fmt.Sprintf(warningSkipSubdirFormat, node.RelativePath, readError))
		return
	}
	rules, rulesError := parentRules.ForDirectory(node.AbsolutePath, node.RelativePath)
	if rulesError != nil {
		builder.logger.Warn(fmt.Sprintf(warningIgnoreFileFormat, node.RelativePath, rulesError))
	}
	node.Children = builder.buildChildren(node.Entry, rules, directoryEntries)
}

// classifyChild converts a directory entry into a traversal entry. Symlinks are never followed
// and are reported as files.
func classifyChild(parent types.Entry, directoryEntry os.DirEntry) types.Entry {
	entry := types.Entry{
		Name:         directoryEntry.Name(),
		RelativePath: utils.JoinDisplayPath(parent.RelativePath, directoryEntry.Name()),
		AbsolutePath: filepath.Join(parent.AbsolutePath, directoryEntry.Name()),
		Kind:         types.KindFile,
		Depth:        parent.Depth + 1,
	}
	switch {
	case directoryEntry.Type()&fs.ModeSymlink != 0:
		entry.IsSymlink = true
	case directoryEntry.IsDir():
		entry.Kind = types.KindDirectory
	}
	return entry
}

// sortNodes orders directories before files, then by case-sensitive name.
func sortNodes(nodes []*types.TreeNode) {
	sort.Slice(nodes, func(left, right int) bool {
		leftIsDir, rightIsDir := nodes[left].IsDir(), nodes[right].IsDir()
		if leftIsDir != rightIsDir {
			return leftIsDir
		}
		return nodes[left].Name < nodes[right].Name
	})
}

func classifyAccessError(accessError error) error {
	switch {
	case errors.Is(accessError, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", types.ErrPathNotFound, accessError)
	case errors.Is(accessError, fs.ErrPermission):
		return fmt.Errorf("%w: %w", types.ErrPermissionDenied, accessError)
	default:
		return accessError
	}
}

func describeAccessError(accessError error) string {
	if errors.Is(accessError, fs.ErrPermission) {
		return types.ErrPermissionDenied.Error()
	}
	var pathError *fs.PathError
	if errors.As(accessError, &pathError) {
		return pathError.Err.Error()
	}
	return accessError.Error()
}
