package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rmatter/devsetup/internal/assets"
	"github.com/rmatter/devsetup/internal/editor"
	"github.com/rmatter/devsetup/internal/settings"
)

// Config represents the complete devsetup configuration
type Config struct {
	Repo     RepoConfig     `yaml:"repo"`
	Editor   EditorConfig   `yaml:"editor"`
	Paths    PathsConfig    `yaml:"paths"`
	Sync     SyncConfig     `yaml:"sync"`
	Settings SettingsConfig `yaml:"settings"`
}

// RepoConfig configures the assets repository source
type RepoConfig struct {
	URL    string `yaml:"url"`
	Ref    string `yaml:"ref"`
	Subdir string `yaml:"subdir"`
}

// EditorConfig configures the editor channel and version gate
type EditorConfig struct {
	Channel    string `yaml:"channel"`
	MinVersion string `yaml:"min_version"`
	Command    string `yaml:"command"`
}

// PathsConfig overrides resolved filesystem paths
type PathsConfig struct {
	UserConfigDir string `yaml:"user_config_dir"`
	SettingsFile  string `yaml:"settings_file"`
}

// SyncConfig configures sync behavior
type SyncConfig struct {
	KeepTemp   bool              `yaml:"keep_temp"`
	Categories []assets.Category `yaml:"categories"`
}

// SettingsConfig configures the settings merge
type SettingsConfig struct {
	Overrides []settings.Override `yaml:"overrides"`
}

// Default returns a configuration with all defaults applied and no
// repository configured. Flags or a config file must supply the rest.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file. Validation is left to the
// caller so CLI flags can be overlaid first.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Expand environment variables in string fields
	cfg.expandEnv()

	// Apply defaults
	cfg.applyDefaults()

	return &cfg, nil
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv() {
	c.Repo.URL = os.ExpandEnv(c.Repo.URL)
	c.Repo.Ref = os.ExpandEnv(c.Repo.Ref)
	c.Repo.Subdir = os.ExpandEnv(c.Repo.Subdir)
	c.Editor.Command = os.ExpandEnv(c.Editor.Command)
	c.Paths.UserConfigDir = os.ExpandEnv(c.Paths.UserConfigDir)
	c.Paths.SettingsFile = os.ExpandEnv(c.Paths.SettingsFile)
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Repo.Ref == "" {
		c.Repo.Ref = "main"
	}
	if c.Editor.Channel == "" {
		c.Editor.Channel = string(editor.ChannelStable)
	}
	if len(c.Sync.Categories) == 0 {
		c.Sync.Categories = assets.DefaultCategories()
	}
	if len(c.Settings.Overrides) == 0 {
		c.Settings.Overrides = DefaultOverrides()
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Repo.URL == "" {
		return fmt.Errorf("repo.url is required")
	}
	if c.Repo.Ref == "" {
		return fmt.Errorf("repo.ref is required")
	}

	if _, err := editor.ParseChannel(c.Editor.Channel); err != nil {
		return err
	}
	if c.Editor.MinVersion != "" && !editor.ValidVersion(c.Editor.MinVersion) {
		return fmt.Errorf("invalid editor.min_version: %s", c.Editor.MinVersion)
	}

	// Overridden paths must be absolute
	if c.Paths.UserConfigDir != "" && !filepath.IsAbs(c.Paths.UserConfigDir) {
		return fmt.Errorf("paths.user_config_dir must be an absolute path: %s", c.Paths.UserConfigDir)
	}
	if c.Paths.SettingsFile != "" && !filepath.IsAbs(c.Paths.SettingsFile) {
		return fmt.Errorf("paths.settings_file must be an absolute path: %s", c.Paths.SettingsFile)
	}

	for _, cat := range c.Sync.Categories {
		if cat.Name == "" {
			return fmt.Errorf("sync.categories entries require a name")
		}
		if cat.Source == "" {
			return fmt.Errorf("sync category %s requires a source", cat.Name)
		}
	}

	for _, o := range c.Settings.Overrides {
		if o.Key == "" {
			return fmt.Errorf("settings.overrides entries require a key")
		}
	}

	return nil
}

// DefaultOverrides is the standard table of settings applied to the
// editor's settings.json. The keys are configuration data; the merger
// itself is table-agnostic.
func DefaultOverrides() []settings.Override {
	return []settings.Override{
		{Key: "chat.agent.thinkingTool", Value: true},
		{Key: "github.copilot.chat.codeGeneration.useInstructionFiles", Value: true},
		{Key: "chat.agent.maxRequests", Value: 500},
		{Key: "chat.todoListTool.enabled", Value: true},
		{Key: "chat.alternatePrompt.enabled", Value: true},
		{Key: "chat.alternatePrompt.version", Value: "v2"},
		{Key: "chat.agent.nestedAgentInSubagent", Value: true},
		{Key: "chat.agent.thinkingBudgetTokens", Value: 32000},
		{Key: "chat.useNestedAgentsMdFiles", Value: true},
		{Key: "chat.useSkillAdherencePrompt", Value: true},
	}
}
