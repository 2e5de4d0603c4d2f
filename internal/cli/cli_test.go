package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	lockedProjectText = "# tree structure of directory `proj`\n" +
		"📁 proj\n" +
		"└── 📁 src\n" +
		"    └── 📄 main.x\n"
	unlockedProjectText = "# tree structure of directory `proj`\n" +
		"📁 proj\n" +
		"├── 📁 src\n" +
		"│   └── 📄 main.x\n" +
		"└── 📄 Cargo.lock\n"
	dirsOnlyProjectText = "# tree structure of directory `proj`\n" +
		"📁 proj\n" +
		"└── 📁 src\n"
	lockedProjectJSON = `{
  "name": "proj",
  "path": ".",
  "is_dir": true,
  "children": [
    {
      "name": "src",
      "path": "./src",
      "is_dir": true,
      "children": [
        {"name": "main.x", "path": "./src/main.x", "is_dir": false}
      ]
    }
  ]
}`
	dirsOnlyProjectJSON = `{
  "name": "proj",
  "path": ".",
  "is_dir": true,
  "children": [
    {"name": "src", "path": "./src", "is_dir": true, "children": []}
  ]
}`
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

type commandHarness struct {
	workingDirectory string
	stdout           *bytes.Buffer
	copier           *recordingCopier
	logger           *zap.Logger
	logs             *observer.ObservedLogs
}

func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	return &commandHarness{
		workingDirectory: t.TempDir(),
		stdout:           &bytes.Buffer{},
		copier:           &recordingCopier{},
		logger:           zap.New(core),
		logs:             logs,
	}
}

func (harness *commandHarness) run(arguments ...string) error {
	return Execute(arguments, Dependencies{
		Stdout:           harness.stdout,
		Copier:           harness.copier,
		Logger:           harness.logger,
		WorkingDirectory: harness.workingDirectory,
		HomeDirectory:    harness.workingDirectory,
		IsTerminal:       func(io.Writer) bool { return false },
	})
}

func writeFixture(t *testing.T, root string, relativePath string, content string) {
	t.Helper()
	fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
}

func writeLockedProject(t *testing.T, workingDirectory string) {
	t.Helper()
	writeFixture(t, workingDirectory, "proj/src/main.x", "fn main() {}\n")
	writeFixture(t, workingDirectory, "proj/Cargo.lock", "# lock\n")
}

func TestDirectoryModeFiltersLockFiles(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  string
		json      bool
	}{
		{name: "tree_excludes_locks", arguments: []string{"proj"}, expected: lockedProjectText},
		{name: "tree_includes_locks", arguments: []string{"proj", "--include-locks"}, expected: unlockedProjectText},
		{name: "tree_includes_locks_literal", arguments: []string{"proj", "--include-locks", "yes"}, expected: unlockedProjectText},
		{name: "tree_dirs_only", arguments: []string{"proj", "--dirs-only"}, expected: dirsOnlyProjectText},
		{name: "json_excludes_locks", arguments: []string{"proj", "--output", "json"}, expected: lockedProjectJSON, json: true},
		{name: "json_dirs_only", arguments: []string{"--dirs-only", "--output", "JSON", "proj"}, expected: dirsOnlyProjectJSON, json: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			writeLockedProject(t, harness.workingDirectory)

			require.NoError(t, harness.run(testCase.arguments...))
			if testCase.json {
				assert.JSONEq(t, testCase.expected, harness.stdout.String())
			} else {
				assert.Equal(t, testCase.expected, harness.stdout.String())
			}
			require.Len(t, harness.copier.copied, 1)
			assert.Equal(t, harness.stdout.String(), harness.copier.copied[0])
		})
	}
}

func TestDirectoryModeWithoutIcons(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)

	require.NoError(t, harness.run("proj", "--no-icons", "--no-copy"))
	expected := "# tree structure of directory `proj`\n" +
		"proj\n" +
		"└── src/\n" +
		"    └── main.x\n"
	assert.Equal(t, expected, harness.stdout.String())
}

func TestDirectoryModeEmbedsContent(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)

	require.NoError(t, harness.run("proj", "--content", "--no-copy"))
	output := harness.stdout.String()
	assert.Contains(t, output, "└── 📄 main.x\n")
	assert.Contains(t, output, "fn main() {}")
	assert.NotContains(t, output, "# lock")
}

func TestDirectoryModeMaxDepthZero(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)

	require.NoError(t, harness.run("proj", "--max-depth", "0", "--output", "json"))
	assert.JSONEq(t, `{"name": "proj", "path": ".", "is_dir": true, "children": []}`, harness.stdout.String())
}

func TestFileModePrintsDisplayPathAndContent(t *testing.T) {
	harness := newCommandHarness(t)
	writeFixture(t, harness.workingDirectory, "notes.txt", "hello")

	require.NoError(t, harness.run("notes.txt"))
	assert.Equal(t, "./notes.txt\nhello", harness.stdout.String())
	assert.Equal(t, []string{"./notes.txt\nhello"}, harness.copier.copied)
	assert.Equal(t, 1, harness.logs.FilterMessage(clipboardMessage).Len())
}

func TestFileModeIgnoresDirectoryOnlyFlags(t *testing.T) {
	harness := newCommandHarness(t)
	writeFixture(t, harness.workingDirectory, "Cargo.lock", "locked")

	require.NoError(t, harness.run("Cargo.lock", "--dirs-only", "--output", "json", "--no-copy"))
	assert.Equal(t, "./Cargo.lock\nlocked", harness.stdout.String())
}

func TestNoCopySkipsClipboard(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)

	require.NoError(t, harness.run("proj", "--no-copy"))
	assert.Empty(t, harness.copier.copied)
	assert.Equal(t, lockedProjectText, harness.stdout.String())
	assert.Zero(t, harness.logs.FilterMessage(clipboardMessage).Len())
}

func TestClipboardFailureStillWritesStdout(t *testing.T) {
	harness := newCommandHarness(t)
	harness.copier.err = errors.New("no display")
	writeLockedProject(t, harness.workingDirectory)

	executionError := harness.run("proj")
	require.NoError(t, executionError)
	assert.Equal(t, ExitSuccess, ExitCode(executionError))
	assert.Equal(t, lockedProjectText, harness.stdout.String())

	warnings := harness.logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "no display")
}

func TestConfigurationFileSuppliesDefaults(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)
	writeFixture(t, harness.workingDirectory, ".sdir.yaml", "dirs_only: true\ncopy: false\n")

	require.NoError(t, harness.run("proj"))
	assert.Equal(t, dirsOnlyProjectText, harness.stdout.String())
	assert.Empty(t, harness.copier.copied)

	harness.stdout.Reset()
	require.NoError(t, harness.run("proj", "--dirs-only=false"))
	assert.Equal(t, lockedProjectText, harness.stdout.String())
}

func TestExplicitConfigurationFile(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)
	writeFixture(t, harness.workingDirectory, "custom.yaml", "include_locks: true\noutput: tree\n")

	require.NoError(t, harness.run("proj", "--config", "custom.yaml", "--no-copy"))
	assert.Equal(t, unlockedProjectText, harness.stdout.String())

	missingError := harness.run("proj", "--config", "absent.yaml")
	require.Error(t, missingError)
	assert.Equal(t, ExitUsage, ExitCode(missingError))
}

func TestExclusionFlagAndGitignore(t *testing.T) {
	harness := newCommandHarness(t)
	writeLockedProject(t, harness.workingDirectory)
	writeFixture(t, harness.workingDirectory, "proj/build/out.bin", "binary")
	writeFixture(t, harness.workingDirectory, "proj/.gitignore", "build/\n")
	writeFixture(t, harness.workingDirectory, "proj/notes.md", "notes")

	require.NoError(t, harness.run("proj", "-e", "notes.md", "-e", ".gitignore", "--no-copy"))
	assert.Equal(t, lockedProjectText, harness.stdout.String())

	harness.stdout.Reset()
	require.NoError(t, harness.run("proj", "--no-gitignore", "--dirs-only", "--no-copy"))
	assert.Contains(t, harness.stdout.String(), "📁 build\n")
}

func TestFailuresMapToExitCodes(t *testing.T) {
	testCases := []struct {
		name         string
		arguments    []string
		expectedCode int
	}{
		{name: "missing_path", arguments: []string{"absent"}, expectedCode: ExitPathResolution},
		{name: "invalid_output", arguments: []string{"proj", "--output", "xml"}, expectedCode: ExitUsage},
		{name: "negative_depth", arguments: []string{"proj", "--max-depth", "-1"}, expectedCode: ExitUsage},
		{name: "unknown_flag", arguments: []string{"--bogus"}, expectedCode: ExitUsage},
		{name: "too_many_arguments", arguments: []string{"proj", "other"}, expectedCode: ExitUsage},
		{name: "undecodable_file", arguments: []string{"binary.dat"}, expectedCode: ExitFileRead},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			writeLockedProject(t, harness.workingDirectory)
			writeFixture(t, harness.workingDirectory, "binary.dat", string([]byte{0xff, 0xfe, 0x00}))

			executionError := harness.run(testCase.arguments...)
			require.Error(t, executionError)
			assert.Equal(t, testCase.expectedCode, ExitCode(executionError))
			assert.Empty(t, harness.stdout.String())
			assert.Empty(t, harness.copier.copied)
		})
	}
}

func TestVersionFlagPrintsVersion(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run("--version"))
	assert.True(t, strings.HasPrefix(harness.stdout.String(), "sdir version: "))
	assert.Empty(t, harness.copier.copied)
}

func TestDirectoryModeSkipsHiddenEntriesByDefault(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		configuration string
		expected      string
	}{
		{
			name:      "default_skips_dot_entries",
			arguments: []string{"--no-copy", "proj"},
			expected: "# tree structure of directory `proj`\n" +
				"📁 proj\n" +
				"└── 📄 main.x\n",
		},
		{
			name:      "flag_shows_dot_entries",
			arguments: []string{"--no-copy", "--hidden", "proj"},
			expected: "# tree structure of directory `proj`\n" +
				"📁 proj\n" +
				"├── 📁 .github\n" +
				"│   └── 📄 ci.yml\n" +
				"├── 📄 .env\n" +
				"└── 📄 main.x\n",
		},
		{
			name:          "configuration_shows_dot_entries",
			arguments:     []string{"--no-copy", "proj", "--dirs-only"},
			configuration: "hidden: true\n",
			expected: "# tree structure of directory `proj`\n" +
				"📁 proj\n" +
				"└── 📁 .github\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			writeFixture(t, harness.workingDirectory, "proj/.env", "SECRET=1\n")
			writeFixture(t, harness.workingDirectory, "proj/.github/ci.yml", "on: push\n")
			writeFixture(t, harness.workingDirectory, "proj/main.x", "fn main() {}\n")
			if testCase.configuration != "" {
				writeFixture(t, harness.workingDirectory, ".sdir.yaml", testCase.configuration)
			}

			require.NoError(t, harness.run(testCase.arguments...))
			assert.Equal(t, testCase.expected, harness.stdout.String())
		})
	}
}

func TestDirectoryModeFollowsNestedGitignoreSemantics(t *testing.T) {
	harness := newCommandHarness(t)
	writeFixture(t, harness.workingDirectory, "proj/.gitignore", "*.log\nsrc/gen\n")
	writeFixture(t, harness.workingDirectory, "proj/sub/.gitignore", "!keep.log\n")
	writeFixture(t, harness.workingDirectory, "proj/sub/keep.log", "kept")
	writeFixture(t, harness.workingDirectory, "proj/sub/debug.log", "dropped")
	writeFixture(t, harness.workingDirectory, "proj/src/gen/b.x", "generated")
	writeFixture(t, harness.workingDirectory, "proj/x/src/gen/a.x", "source")

	require.NoError(t, harness.run("--no-copy", "proj"))
	expected := "# tree structure of directory `proj`\n" +
		"📁 proj\n" +
		"├── 📁 src\n" +
		"├── 📁 sub\n" +
		"│   └── 📄 keep.log\n" +
		"└── 📁 x\n" +
		"    └── 📁 src\n" +
		"        └── 📁 gen\n" +
		"            └── 📄 a.x\n"
	assert.Equal(t, expected, harness.stdout.String())
}

func TestPathArgumentNamedLikeShortBooleanLiteral(t *testing.T) {
	for _, directoryName := range []string{"t", "1", "n"} {
		t.Run(directoryName, func(t *testing.T) {
			harness := newCommandHarness(t)
			writeFixture(t, harness.workingDirectory, directoryName+"/inner/file.x", "x")

			require.NoError(t, harness.run("--no-copy", "--dirs-only", directoryName))
			expected := "# tree structure of directory `" + directoryName + "`\n" +
				"📁 " + directoryName + "\n" +
				"└── 📁 inner\n"
			assert.Equal(t, expected, harness.stdout.String())
		})
	}
}
