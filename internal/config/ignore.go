// Package config loads application configuration and compiles ignore files into matchers.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/temirov/sdir/internal/types"
	"github.com/temirov/sdir/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"

	commentPrefix          = "#"
	negationPrefix         = "!"
	anchorPrefix           = "/"
	relativeSegmentPrefix  = "./"
	pathSegmentSeparator   = "/"
	errorLoadIgnoreFormat  = "loading %s from %s: %w"
	warningCloseFileFormat = "failed to close %s: %v"
)

// IgnoreOptions selects the sources that contribute ignore rules.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
	// Warn receives non-fatal problems such as close failures.
	Warn func(string)
}

// ignorePattern is one compiled ignore line. Negated lines are compiled without the "!"
// so that a match can be told apart from no match.
type ignorePattern struct {
	matcher *gitignore.GitIgnore
	negate  bool
}

type ignoreScope struct {
	baseDirectory string
	patterns      []ignorePattern
}

// IgnoreRules is the stack of gitignore matchers in effect for one directory.
// Each scope matches paths relative to the directory that declared it.
// Values are never mutated; ForDirectory returns an extended copy.
type IgnoreRules struct {
	options IgnoreOptions
	scopes  []ignoreScope
}

// NewIgnoreRules creates the rules for a traversal root: the command line exclusion
// patterns, the Git directory unless options.IncludeGit is set, and the root's own ignore files.
func NewIgnoreRules(rootDirectoryPath string, options IgnoreOptions) (IgnoreRules, error) {
	var rootPatterns []string
	if !options.IncludeGit {
		rootPatterns = append(rootPatterns, gitDirectoryPattern)
	}
	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		rootPatterns = append(rootPatterns, trimmedPattern)
	}

	rules := IgnoreRules{options: options}
	if len(rootPatterns) > 0 {
		rules.scopes = append(rules.scopes, ignoreScope{patterns: compileIgnorePatterns(deduplicatePatterns(rootPatterns))})
	}
	return rules.ForDirectory(rootDirectoryPath, types.RootRelativePath)
}

// ForDirectory returns the rules extended with the ignore files found in absoluteDirectoryPath.
// relativeDirectory is the slash-separated path of that directory below the traversal root.
func (rules IgnoreRules) ForDirectory(absoluteDirectoryPath string, relativeDirectory string) (IgnoreRules, error) {
	var directoryPatterns []string

	if rules.options.UseIgnoreFile {
		ignoreFilePath := filepath.Join(absoluteDirectoryPath, utils.IgnoreFileName)
		ignorePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath, rules.options.Warn)
		if loadError != nil {
			return rules, fmt.Errorf(errorLoadIgnoreFormat, utils.IgnoreFileName, absoluteDirectoryPath, loadError)
		}
		directoryPatterns = append(directoryPatterns, ignorePatterns...)
	}

	if rules.options.UseGitignore {
		gitIgnoreFilePath := filepath.Join(absoluteDirectoryPath, utils.GitIgnoreFileName)
		gitIgnorePatterns, loadError := LoadIgnoreFilePatterns(gitIgnoreFilePath, rules.options.Warn)
		if loadError != nil {
			return rules, fmt.Errorf(errorLoadIgnoreFormat, utils.GitIgnoreFileName, absoluteDirectoryPath, loadError)
		}
		directoryPatterns = append(directoryPatterns, gitIgnorePatterns...)
	}

	if len(directoryPatterns) == 0 {
		return rules, nil
	}

	extendedScopes := make([]ignoreScope, len(rules.scopes), len(rules.scopes)+1)
	copy(extendedScopes, rules.scopes)
	extendedScopes = append(extendedScopes, ignoreScope{
		baseDirectory: normalizeRelativePath(relativeDirectory),
		patterns:      compileIgnorePatterns(deduplicatePatterns(directoryPatterns)),
	})
	return IgnoreRules{options: rules.options, scopes: extendedScopes}, nil
}

// Matches reports whether the slash-separated path relative to the traversal root is ignored.
// The deepest scope with a matching line decides, and within a scope the last matching line wins,
// so a nested negation re-includes a path ignored by a parent directory.
func (rules IgnoreRules) Matches(relativePath string, isDirectory bool) bool {
	normalizedPath := normalizeRelativePath(relativePath)
	if normalizedPath == "" {
		return false
	}
	for scopeIndex := len(rules.scopes) - 1; scopeIndex >= 0; scopeIndex-- {
		scope := rules.scopes[scopeIndex]
		candidatePath := normalizedPath
		if scope.baseDirectory != "" {
			scopePrefix := scope.baseDirectory + pathSegmentSeparator
			if !strings.HasPrefix(normalizedPath, scopePrefix) {
				continue
			}
			candidatePath = strings.TrimPrefix(normalizedPath, scopePrefix)
		}
		if isDirectory {
			candidatePath += pathSegmentSeparator
		}
		for patternIndex := len(scope.patterns) - 1; patternIndex >= 0; patternIndex-- {
			pattern := scope.patterns[patternIndex]
			if pattern.matcher.MatchesPath(candidatePath) {
				return !pattern.negate
			}
		}
	}
	return false
}

// compileIgnorePatterns compiles each line separately, keeping its negation flag.
func compileIgnorePatterns(lines []string) []ignorePattern {
	patterns := make([]ignorePattern, 0, len(lines))
	for _, line := range lines {
		body, negated := strings.CutPrefix(line, negationPrefix)
		body = anchorPattern(body)
		if body == "" {
			continue
		}
		patterns = append(patterns, ignorePattern{matcher: gitignore.CompileIgnoreLines(body), negate: negated})
	}
	return patterns
}

// anchorPattern roots a pattern that contains a slash before its last character
// at the directory of the file that declared it.
func anchorPattern(pattern string) string {
	if strings.HasPrefix(pattern, anchorPrefix) {
		return pattern
	}
	if strings.Contains(strings.TrimSuffix(pattern, pathSegmentSeparator), pathSegmentSeparator) {
		return anchorPrefix + pattern
	}
	return pattern
}

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns without blank lines or comments.
// A missing file yields no patterns and no error.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string, warn func(string)) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil && warn != nil {
			warn(fmt.Sprintf(warningCloseFileFormat, ignoreFilePath, closeError))
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

func normalizeRelativePath(relativePath string) string {
	normalized := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	normalized = strings.TrimPrefix(normalized, relativeSegmentPrefix)
	normalized = strings.Trim(normalized, pathSegmentSeparator)
	if normalized == types.RootRelativePath {
		return ""
	}
	return normalized
}

// deduplicatePatterns removes duplicate patterns while preserving the order of first occurrence.
func deduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}
