package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmatter/devsetup/internal/config"
	"github.com/rmatter/devsetup/internal/editor"
	"github.com/rmatter/devsetup/internal/git"
	"github.com/rmatter/devsetup/internal/setup"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Setup command flags
	repoURL  string
	repoRef  string
	channel  string
	keepTemp bool
	dryRun   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "devsetup",
	Short: "Set up a development machine from a shared assets repository",
	Long: `devsetup fetches a configuration-assets repository, installs a curated
subset of its files into the editor's user configuration directory, and
merges a fixed set of settings into the editor's settings.json.

The whole run is idempotent: files are only written when their content
actually changed, and --dry-run shows every decision without touching disk.`,
	SilenceUsage: true,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Fetch the assets repository and apply it to this machine",
	Long: `Setup fetches the configured assets repository at the configured ref,
syncs each asset category into the editor's user configuration directory,
and merges the settings overrides into settings.json.

Files already identical at the destination are never rewritten. The fetched
tree is removed at the end of the run unless --keep-temp is given.`,
	RunE: runSetup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("devsetup %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/devsetup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Setup command flags
	setupCmd.Flags().StringVar(&repoURL, "repo-url", "", "assets repository URL")
	setupCmd.Flags().StringVar(&repoRef, "ref", "", "branch, tag, or commit to fetch (default main)")
	setupCmd.Flags().StringVar(&channel, "channel", "", "editor channel (stable, insiders)")
	setupCmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "keep the fetched tree after the run")
	setupCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without making changes")

	// Add commands
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(versionCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := loadConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create dependencies
	gitClient := git.NewShellClient()
	prober := editor.NewCLIProber(cfg.Editor.Command)

	// Create setup engine
	engine := setup.NewEngine(cfg, gitClient, prober, logger, dryRun)

	// Run setup
	logger.Info("starting setup operation")
	if err := engine.Run(ctx); err != nil {
		logger.Error("setup failed", "error", err)
		return err
	}

	return nil
}

// applyFlagOverrides overlays setup command flags onto the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if repoURL != "" {
		cfg.Repo.URL = repoURL
	}
	if repoRef != "" {
		cfg.Repo.Ref = repoRef
	}
	if channel != "" {
		cfg.Editor.Channel = channel
	}
	if cmd.Flags().Changed("keep-temp") {
		cfg.Sync.KeepTemp = keepTemp
	}
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	// An explicit --config must exist; the default path is optional.
	if cfgFile != "" {
		logger.Info("loading configuration", "path", cfgFile)
		return config.Load(cfgFile)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	defaultPath := fmt.Sprintf("%s/.config/devsetup/config.yaml", home)

	if _, err := os.Stat(defaultPath); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no config file found, using defaults", "path", defaultPath)
			return config.Default(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	logger.Info("loading configuration", "path", defaultPath)
	return config.Load(defaultPath)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
