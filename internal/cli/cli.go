// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sdir/internal/config"
	"github.com/temirov/sdir/internal/filemode"
	"github.com/temirov/sdir/internal/render"
	"github.com/temirov/sdir/internal/services/clipboard"
	"github.com/temirov/sdir/internal/sink"
	"github.com/temirov/sdir/internal/tree"
	"github.com/temirov/sdir/internal/types"
	"github.com/temirov/sdir/internal/utils"
)

const (
	rootUse              = "sdir [path]"
	rootShortDescription = "print a file or a directory tree and copy it to the clipboard"
	rootLongDescription  = `sdir prints a file prefixed by its relative path, or renders a directory as a tree.
Lock files are hidden unless --include-locks is given. Use --output json for a JSON document,
--content to embed file contents in the tree, and --no-copy to skip the clipboard.`
	rootUsageExample = `  # Render the current directory two levels deep
  sdir --max-depth 2

  # Show only directories as JSON
  sdir --dirs-only --output json ./internal

  # Print a single file without touching the clipboard
  sdir --no-copy main.go`

	defaultPath      = "."
	versionTemplate  = "sdir version: %s\n"
	stdoutSinkName   = "stdout"
	noColorVariable  = "NO_COLOR"
	clipboardMessage = "copied to clipboard"

	dirsOnlyFlagName     = "dirs-only"
	maxDepthFlagName     = "max-depth"
	outputFlagName       = "output"
	noCopyFlagName       = "no-copy"
	includeLocksFlagName = "include-locks"
	contentFlagName      = "content"
	hiddenFlagName       = "hidden"
	noColorFlagName      = "no-color"
	noIconsFlagName      = "no-icons"
	exclusionFlagName    = "e"
	noGitignoreFlagName  = "no-gitignore"
	noIgnoreFlagName     = "no-ignore"
	includeGitFlagName   = "git"
	configFlagName       = "config"
	versionFlagName      = "version"

	dirsOnlyFlagDescription     = "list directories only"
	maxDepthFlagDescription     = "maximum depth of directories to expand"
	outputFlagDescription       = "output format: tree or json"
	noCopyFlagDescription       = "do not copy the output to the clipboard"
	includeLocksFlagDescription = "include lock files such as go.sum and package-lock.json"
	contentFlagDescription      = "embed file contents in the tree"
	hiddenFlagDescription       = "show entries whose names start with a dot"
	noColorFlagDescription      = "disable colored output"
	noIconsFlagDescription      = "render names without icons"
	exclusionFlagDescription    = "exclude path pattern"
	noGitignoreFlagDescription  = "do not use .gitignore"
	noIgnoreFlagDescription     = "do not use .ignore"
	includeGitFlagDescription   = "include git directory"
	configFlagDescription       = "configuration file to use instead of ./" + utils.ConfigFileName
	versionFlagDescription      = "display application version"

	errorWorkingDirectoryFormat = "unable to determine working directory: %w"
	errorInvalidOutputFormat    = "invalid output format %q: expected %s or %s"
	errorNegativeDepthFormat    = "invalid --%s %d: must not be negative"
	errorConfigurationFormat    = "loading configuration: %w"
)

// Dependencies are the collaborators the command uses for input and output.
// Zero values are replaced by the process defaults.
type Dependencies struct {
	Stdout           io.Writer
	Copier           clipboard.Copier
	Logger           *zap.Logger
	WorkingDirectory string
	HomeDirectory    string
	// IsTerminal reports whether colored output may be written to the writer.
	IsTerminal func(io.Writer) bool
}

// commandOptions stores the raw flag values of the root command.
type commandOptions struct {
	dirsOnly          bool
	maxDepth          int
	outputFormat      string
	noCopy            bool
	includeLocks      bool
	embedContent      bool
	showHidden        bool
	noColor           bool
	noIcons           bool
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	configPath        string
	showVersion       bool
}

// Execute runs the sdir application with the provided arguments.
func Execute(arguments []string, dependencies Dependencies) error {
	rootCommand := NewRootCommand(dependencies)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	options := &commandOptions{}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, writeError := fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return writeError
			}
			pathArgument := defaultPath
			if len(arguments) > 0 {
				pathArgument = arguments[0]
			}
			workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies.WorkingDirectory)
			if workingDirectoryError != nil {
				return workingDirectoryError
			}
			configuration, configurationError := resolveConfiguration(command, options, pathArgument, workingDirectory, dependencies)
			if configurationError != nil {
				return newUsageError(configurationError)
			}
			return run(configuration, workingDirectory, dependencies)
		},
	}
	rootCommand.SetOut(dependencies.Stdout)

	flagSet := rootCommand.Flags()
	registerBooleanFlag(flagSet, &options.dirsOnly, dirsOnlyFlagName, false, dirsOnlyFlagDescription)
	flagSet.IntVar(&options.maxDepth, maxDepthFlagName, 0, maxDepthFlagDescription)
	flagSet.StringVar(&options.outputFormat, outputFlagName, types.FormatTree, outputFlagDescription)
	registerBooleanFlag(flagSet, &options.noCopy, noCopyFlagName, false, noCopyFlagDescription)
	registerBooleanFlag(flagSet, &options.includeLocks, includeLocksFlagName, false, includeLocksFlagDescription)
	registerBooleanFlag(flagSet, &options.embedContent, contentFlagName, false, contentFlagDescription)
	registerBooleanFlag(flagSet, &options.showHidden, hiddenFlagName, false, hiddenFlagDescription)
	registerBooleanFlag(flagSet, &options.noColor, noColorFlagName, false, noColorFlagDescription)
	registerBooleanFlag(flagSet, &options.noIcons, noIconsFlagName, false, noIconsFlagDescription)
	flagSet.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flagSet, &options.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	registerBooleanFlag(flagSet, &options.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	registerBooleanFlag(flagSet, &options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(flagSet, &options.showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return newUsageError(flagError)
	})
	return rootCommand
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.IsTerminal == nil {
		dependencies.IsTerminal = isTerminalWriter
	}
	return dependencies
}

func resolveWorkingDirectory(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
	}
	return workingDirectory, nil
}

// resolveConfiguration combines configuration files and explicitly set flags.
func resolveConfiguration(command *cobra.Command, options *commandOptions, pathArgument string, workingDirectory string, dependencies Dependencies) (types.Configuration, error) {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
		HomeDirectory:    dependencies.HomeDirectory,
	})
	if loadError != nil {
		return types.Configuration{}, fmt.Errorf(errorConfigurationFormat, loadError)
	}

	flagSet := command.Flags()
	changed := flagSet.Changed

	configuration := types.Configuration{
		RootPath:          pathArgument,
		DirsOnly:          config.BoolOrDefault(applicationConfiguration.DirsOnly, false),
		MaxDepth:          applicationConfiguration.MaxDepth,
		OutputFormat:      types.FormatTree,
		IncludeLocks:      config.BoolOrDefault(applicationConfiguration.IncludeLocks, false),
		Copy:              config.BoolOrDefault(applicationConfiguration.Copy, true),
		EmbedContent:      config.BoolOrDefault(applicationConfiguration.Content, false),
		SkipHidden:        !config.BoolOrDefault(applicationConfiguration.Hidden, false),
		Color:             config.BoolOrDefault(applicationConfiguration.Color, true),
		Icons:             config.BoolOrDefault(applicationConfiguration.Icons, true),
		ExclusionPatterns: append([]string{}, applicationConfiguration.Paths.Exclude...),
		UseGitignore:      config.BoolOrDefault(applicationConfiguration.Paths.UseGitignore, true),
		UseIgnoreFile:     config.BoolOrDefault(applicationConfiguration.Paths.UseIgnoreFile, true),
		IncludeGit:        config.BoolOrDefault(applicationConfiguration.Paths.IncludeGit, false),
		ExtraLockFiles:    applicationConfiguration.LockFiles,
	}
	if applicationConfiguration.Output != "" {
		configuration.OutputFormat = applicationConfiguration.Output
	}

	if changed(dirsOnlyFlagName) {
		configuration.DirsOnly = options.dirsOnly
	}
	if changed(maxDepthFlagName) {
		if options.maxDepth < 0 {
			return types.Configuration{}, fmt.Errorf(errorNegativeDepthFormat, maxDepthFlagName, options.maxDepth)
		}
		maxDepth := options.maxDepth
		configuration.MaxDepth = &maxDepth
	}
	if changed(outputFlagName) {
		configuration.OutputFormat = strings.ToLower(strings.TrimSpace(options.outputFormat))
	}
	if changed(noCopyFlagName) {
		configuration.Copy = !options.noCopy
	}
	if changed(includeLocksFlagName) {
		configuration.IncludeLocks = options.includeLocks
	}
	if changed(contentFlagName) {
		configuration.EmbedContent = options.embedContent
	}
	if changed(hiddenFlagName) {
		configuration.SkipHidden = !options.showHidden
	}
	if changed(noColorFlagName) {
		configuration.Color = !options.noColor
	}
	if changed(noIconsFlagName) {
		configuration.Icons = !options.noIcons
	}
	if changed(noGitignoreFlagName) {
		configuration.UseGitignore = !options.disableGitignore
	}
	if changed(noIgnoreFlagName) {
		configuration.UseIgnoreFile = !options.disableIgnoreFile
	}
	if changed(includeGitFlagName) {
		configuration.IncludeGit = options.includeGit
	}
	configuration.ExclusionPatterns = append(configuration.ExclusionPatterns, options.exclusionPatterns...)

	switch configuration.OutputFormat {
	case types.FormatTree, types.FormatJSON:
	default:
		return types.Configuration{}, fmt.Errorf(errorInvalidOutputFormat, configuration.OutputFormat, types.FormatTree, types.FormatJSON)
	}

	if configuration.Color {
		_, noColorRequested := os.LookupEnv(noColorVariable)
		configuration.Color = !noColorRequested && dependencies.IsTerminal(dependencies.Stdout)
	}
	return configuration, nil
}

// run renders configuration.RootPath and delivers the artifact to stdout and, when enabled, the clipboard.
func run(configuration types.Configuration, workingDirectory string, dependencies Dependencies) error {
	absoluteRoot := configuration.RootPath
	if !filepath.IsAbs(absoluteRoot) {
		absoluteRoot = filepath.Join(workingDirectory, absoluteRoot)
	}

	rootEntry, classifyError := tree.Classify(absoluteRoot)
	if classifyError != nil {
		return &types.TraversalError{Path: configuration.RootPath, Err: unwrapTraversal(classifyError)}
	}

	var artifact sink.Artifact
	if rootEntry.IsDir() {
		directoryArtifact, directoryError := renderDirectory(configuration, absoluteRoot, workingDirectory, dependencies.Logger)
		if directoryError != nil {
			return directoryError
		}
		artifact = directoryArtifact
	} else {
		fileResult, readError := filemode.ReadFile(absoluteRoot, workingDirectory)
		if readError != nil {
			return readError
		}
		artifact = sink.Artifact{Plain: fileResult.Format()}
	}

	fanout := sink.NewFanout(dependencies.Logger).
		AddRequired(sink.NewWriterSink(stdoutSinkName, dependencies.Stdout, configuration.Color))
	if configuration.Copy {
		fanout.AddOptional(sink.NewClipboardSink(dependencies.Copier))
	}
	warnings, deliveryError := fanout.Deliver(artifact)
	if deliveryError != nil {
		return deliveryError
	}
	if configuration.Copy && len(warnings) == 0 {
		dependencies.Logger.Info(clipboardMessage)
	}
	return nil
}

// renderDirectory builds the tree once and renders it in the configured format.
func renderDirectory(configuration types.Configuration, absoluteRoot string, workingDirectory string, logger *zap.Logger) (sink.Artifact, error) {
	builder := tree.NewBuilder(configuration, tree.WithLogger(logger))
	rootNode, buildError := builder.Build(absoluteRoot)
	if buildError != nil {
		return sink.Artifact{}, &types.TraversalError{Path: configuration.RootPath, Err: unwrapTraversal(buildError)}
	}

	if configuration.OutputFormat == types.FormatJSON {
		document, renderError := render.RenderJSON(rootNode)
		if renderError != nil {
			return sink.Artifact{}, renderError
		}
		return sink.Artifact{Plain: document}, nil
	}

	textOptions := render.TextOptions{
		Heading:   utils.DirectoryDisplayName(configuration.RootPath, workingDirectory),
		RootLabel: configuration.RootPath,
		Icons:     configuration.Icons,
	}
	artifact := sink.Artifact{Plain: render.RenderText(rootNode, textOptions)}
	if configuration.Color {
		textOptions.Color = true
		artifact.Styled = render.RenderText(rootNode, textOptions)
	}
	return artifact, nil
}

// isTerminalWriter reports whether writer is a terminal file descriptor.
func isTerminalWriter(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
