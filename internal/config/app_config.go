package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/sdir/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user's home directory when locating the global file.
	HomeDirectory string
}

// ApplicationConfiguration holds defaults read from configuration files.
// Nil pointers and empty values mean "not set" so that later sources and flags can override them.
type ApplicationConfiguration struct {
	DirsOnly     *bool             `mapstructure:"dirs_only"`
	MaxDepth     *int              `mapstructure:"max_depth"`
	Output       string            `mapstructure:"output"`
	Copy         *bool             `mapstructure:"copy"`
	IncludeLocks *bool             `mapstructure:"include_locks"`
	Content      *bool             `mapstructure:"content"`
	Hidden       *bool             `mapstructure:"hidden"`
	Color        *bool             `mapstructure:"color"`
	Icons        *bool             `mapstructure:"icons"`
	LockFiles    []string          `mapstructure:"lock_files"`
	Paths        PathConfiguration `mapstructure:"paths"`
}

// PathConfiguration configures ignore sources for path traversal.
type PathConfiguration struct {
	Exclude       []string `mapstructure:"exclude"`
	UseGitignore  *bool    `mapstructure:"use_gitignore"`
	UseIgnoreFile *bool    `mapstructure:"use_ignore"`
	IncludeGit    *bool    `mapstructure:"include_git"`
}

// LoadApplicationConfiguration loads configuration from the global file and then the local or explicit file.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Paths.Exclude = deduplicatePatterns(merged.Paths.Exclude)
	merged.LockFiles = deduplicatePatterns(merged.LockFiles)
	if merged.Output != "" {
		merged.Output = strings.ToLower(strings.TrimSpace(merged.Output))
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName)
}

func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		reader.SetConfigType("yaml")
	}
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	if config.MaxDepth != nil && *config.MaxDepth < 0 {
		return ApplicationConfiguration{}, fmt.Errorf("configuration %s: max_depth must not be negative", path)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.DirsOnly != nil {
		result.DirsOnly = cloneBool(override.DirsOnly)
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	if override.IncludeLocks != nil {
		result.IncludeLocks = cloneBool(override.IncludeLocks)
	}
	if override.Content != nil {
		result.Content = cloneBool(override.Content)
	}
	if override.Hidden != nil {
		result.Hidden = cloneBool(override.Hidden)
	}
	if override.Color != nil {
		result.Color = cloneBool(override.Color)
	}
	if override.Icons != nil {
		result.Icons = cloneBool(override.Icons)
	}
	if len(override.LockFiles) > 0 {
		result.LockFiles = append(append([]string{}, result.LockFiles...), override.LockFiles...)
	}
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, deduplicatePatterns(override.Exclude)...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.IncludeGit != nil {
		result.IncludeGit = cloneBool(override.IncludeGit)
	}
	return result
}

// BoolOrDefault dereferences value or returns fallback when it is unset.
func BoolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
