// Package utils provides helper functions shared by the sdir packages: version lookup,
// logging, path normalization, and text decoding.
package utils

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion    = "unknown"
	develBuildVersion = "(devel)"
	gitExecutableName = "git"
)

// Version is set at link time with -ldflags "-X github.com/temirov/sdir/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the linked version, then the module build info version,
// then the output of git describe when run from a checkout.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develBuildVersion {
		return buildInfo.Main.Version
	}
	if describedVersion := describeGitVersion(); describedVersion != "" {
		return describedVersion
	}
	return unknownVersion
}

func describeGitVersion() string {
	topLevelOutput, topLevelError := exec.Command(gitExecutableName, "rev-parse", "--show-toplevel").Output()
	if topLevelError != nil {
		return ""
	}
	repositoryRoot := strings.TrimSpace(string(topLevelOutput))
	if repositoryRoot == "" {
		return ""
	}
	describeArguments := [][]string{
		{"describe", "--tags", "--exact-match"},
		{"describe", "--tags", "--long", "--dirty"},
	}
	for _, arguments := range describeArguments {
		// #nosec G204
		describeCommand := exec.Command(gitExecutableName, arguments...)
		describeCommand.Dir = repositoryRoot
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return ""
}
