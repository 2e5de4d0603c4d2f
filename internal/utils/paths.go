package utils

import (
	"path/filepath"
	"strings"
)

const (
	currentDirectoryPath = "."
	displayPathPrefix    = "./"
)

// Ignore file constants used across the project.
const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".sdir.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".sdir"
	// GlobalConfigFileName is the name of the global configuration file.
	GlobalConfigFileName = "config.yaml"
)

// RelativePathOrSelf calculates the slash-separated relative path from root to fullPath.
// Returns "." if fullPath and root resolve to the same directory and the cleaned,
// slash-converted fullPath if no relative path exists.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return filepath.ToSlash(cleanPath)
	}
	if absolutePath, pathError := filepath.Abs(cleanPath); pathError == nil {
		cleanPath = absolutePath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)
	if cleanPath == cleanAbsoluteRoot {
		return currentDirectoryPath
	}
	relativePath, relativeError := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relativeError != nil {
		return filepath.ToSlash(cleanPath)
	}
	return filepath.ToSlash(relativePath)
}

// DisplayPath forces a slash-separated relative path into the "./"-prefixed display form.
// The current directory itself is returned as ".".
func DisplayPath(relativePath string) string {
	normalized := strings.ReplaceAll(relativePath, "\\", "/")
	if normalized == "" || normalized == currentDirectoryPath {
		return currentDirectoryPath
	}
	if strings.HasPrefix(normalized, displayPathPrefix) {
		return normalized
	}
	return displayPathPrefix + strings.TrimPrefix(normalized, "/")
}

// JoinDisplayPath appends a child name to a display path produced by DisplayPath.
func JoinDisplayPath(parentDisplayPath, childName string) string {
	if parentDisplayPath == "" || parentDisplayPath == currentDirectoryPath {
		return displayPathPrefix + childName
	}
	return parentDisplayPath + "/" + childName
}

// DirectoryDisplayName returns the name used to label a directory in headings.
// For "." the base name of workingDirectory is used.
func DirectoryDisplayName(directory string, workingDirectory string) string {
	cleaned := filepath.Clean(directory)
	if cleaned == currentDirectoryPath {
		if workingDirectory == "" {
			return currentDirectoryPath
		}
		baseName := filepath.Base(workingDirectory)
		if baseName == string(filepath.Separator) || baseName == currentDirectoryPath {
			return currentDirectoryPath
		}
		return baseName
	}
	baseName := filepath.Base(cleaned)
	if baseName == string(filepath.Separator) || baseName == ".." {
		return directory
	}
	return baseName
}
