// Package types defines every cross-package data structure used by the sdir CLI.
package types

// EntryKind distinguishes files from directories.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

const (
	FormatTree = "tree"
	FormatJSON = "json"

	// RootRelativePath is the relative path of the traversal root.
	RootRelativePath = "."
	// RelativePathPrefix prefixes every descendant relative path.
	RelativePathPrefix = "./"

	// UnreadableContentMarker replaces the content of a file that could not be read or decoded.
	UnreadableContentMarker = "<unreadable>"
)

// String returns the lowercase name of the kind.
func (kind EntryKind) String() string {
	if kind == KindDirectory {
		return "directory"
	}
	return "file"
}

// Entry is one filesystem item discovered during traversal, before filtering.
type Entry struct {
	Name         string
	RelativePath string
	AbsolutePath string
	Kind         EntryKind
	Depth        int
	IsSymlink    bool
}

// IsDir reports whether the entry is a directory.
func (entry Entry) IsDir() bool {
	return entry.Kind == KindDirectory
}

// TreeNode is a filtered, ordered representation of an Entry and its accepted children.
// Nodes are built once by the tree builder and treated as read-only afterwards.
type TreeNode struct {
	Entry
	Children []*TreeNode
	// Content is set only for files when content embedding was requested.
	Content *string
	// Error records why a directory could not be expanded.
	Error string
}

// Configuration is the resolved snapshot of every option the core consumes.
type Configuration struct {
	RootPath          string
	DirsOnly          bool
	MaxDepth          *int
	OutputFormat      string
	IncludeLocks      bool
	Copy              bool
	EmbedContent      bool
	SkipHidden        bool
	Color             bool
	Icons             bool
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
	ExtraLockFiles    []string
}

// DepthAllowsExpansion reports whether a directory at depth may have its children enumerated.
func (configuration Configuration) DepthAllowsExpansion(depth int) bool {
	if configuration.MaxDepth == nil {
		return true
	}
	return depth < *configuration.MaxDepth
}
