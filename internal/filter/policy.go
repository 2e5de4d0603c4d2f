// Package filter decides which traversal entries are visible.
package filter

import (
	"strings"

	"github.com/temirov/sdir/internal/types"
)

const hiddenEntryPrefix = "."

// IgnoreMatcher reports whether an ignore rule source excludes a path relative to the traversal root.
type IgnoreMatcher interface {
	Matches(relativePath string, isDirectory bool) bool
}

// Policy is the configuration consulted by IsVisible.
type Policy struct {
	DirsOnly     bool
	IncludeLocks bool
	SkipHidden   bool
	LockFiles    LockFileSet
	Ignore       IgnoreMatcher
}

// NewPolicy derives a policy from the resolved configuration and the ignore rules for the current directory.
func NewPolicy(configuration types.Configuration, ignoreMatcher IgnoreMatcher) Policy {
	return Policy{
		DirsOnly:     configuration.DirsOnly,
		IncludeLocks: configuration.IncludeLocks,
		SkipHidden:   configuration.SkipHidden,
		LockFiles:    NewLockFileSet(configuration.ExtraLockFiles...),
		Ignore:       ignoreMatcher,
	}
}

// WithIgnore returns a copy of the policy that consults a different ignore matcher.
func (policy Policy) WithIgnore(ignoreMatcher IgnoreMatcher) Policy {
	policy.Ignore = ignoreMatcher
	return policy
}

// IsVisible applies the rules in order: lock files, directories only, ignore rules, hidden entries.
// It is never called for the traversal root.
func IsVisible(entry types.Entry, policy Policy) bool {
	if !policy.IncludeLocks && policy.LockFiles.Contains(entry.Name) {
		return false
	}
	if policy.DirsOnly && entry.Kind == types.KindFile {
		return false
	}
	if policy.Ignore != nil && policy.Ignore.Matches(entry.RelativePath, entry.IsDir()) {
		return false
	}
	if policy.SkipHidden && strings.HasPrefix(entry.Name, hiddenEntryPrefix) {
		return false
	}
	return true
}
