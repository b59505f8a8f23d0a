package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rmatter/devsetup/internal/config"
	"github.com/rmatter/devsetup/internal/editor"
	"github.com/rmatter/devsetup/internal/fsync"
	"github.com/rmatter/devsetup/internal/git"
	"github.com/rmatter/devsetup/internal/settings"
)

// Engine orchestrates the setup process
type Engine struct {
	cfg    *config.Config
	git    git.Client
	prober editor.Prober
	logger *slog.Logger
	dryRun bool
}

// NewEngine creates a new setup engine
func NewEngine(cfg *config.Config, gitClient git.Client, prober editor.Prober, logger *slog.Logger, dryRun bool) *Engine {
	return &Engine{
		cfg:    cfg,
		git:    gitClient,
		prober: prober,
		logger: logger,
		dryRun: dryRun,
	}
}

// Run executes the complete setup sequence: verify git, gate on the editor
// version, fetch the assets repository, sync each asset category, remove
// the fetched tree, and merge the settings overrides.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("starting setup",
		"repo", e.cfg.Repo.URL,
		"ref", e.cfg.Repo.Ref,
		"channel", e.cfg.Editor.Channel,
		"dry_run", e.dryRun)

	// git is a hard precondition
	if err := e.git.Installed(); err != nil {
		return err
	}

	channel, err := editor.ParseChannel(e.cfg.Editor.Channel)
	if err != nil {
		return err
	}

	// Version gate: an editor that cannot report its version is assumed
	// compatible; a detected version below the minimum blocks the run.
	version, err := e.prober.Version(ctx, channel)
	if err != nil {
		e.logger.Warn("editor version could not be detected, skipping version check", "channel", channel, "error", err)
	} else {
		e.logger.Info("detected editor", "channel", channel, "version", version)
		if err := editor.CheckMinVersion(version, e.cfg.Editor.MinVersion); err != nil {
			return err
		}
	}

	userRoot := e.cfg.Paths.UserConfigDir
	if userRoot == "" {
		userRoot, err = editor.UserConfigRoot(channel)
		if err != nil {
			return fmt.Errorf("failed to resolve editor config directory: %w", err)
		}
	}
	e.logger.Info("resolved editor config directory", "path", userRoot)

	// Fetch repository into a per-run temp directory
	tempDir, err := os.MkdirTemp("", "devsetup-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	cleaned := false
	defer func() {
		if !cleaned {
			e.cleanup(tempDir)
		}
	}()

	e.logger.Info("fetching assets repository", "dest", tempDir)
	if err := e.git.Fetch(ctx, e.cfg.Repo.URL, e.cfg.Repo.Ref, tempDir); err != nil {
		return fmt.Errorf("failed to fetch assets repository: %w", err)
	}

	// Sync each asset category
	syncer := fsync.NewSyncer(e.logger, e.dryRun)
	total := 0
	for _, cat := range e.cfg.Sync.Categories {
		src := cat.SourceDir(tempDir, e.cfg.Repo.Subdir)
		dst := cat.DestDir(userRoot)

		n, err := syncer.Sync(src, dst, cat.Select)
		if err != nil {
			return fmt.Errorf("failed to sync category %s: %w", cat.Name, err)
		}

		if n > 0 {
			e.logger.Info("category synced", "category", cat.Name, "files_updated", n)
		} else {
			e.logger.Info("category already up to date", "category", cat.Name)
		}
		total += n
	}

	e.cleanup(tempDir)
	cleaned = true

	// Merge settings overrides
	settingsPath := e.cfg.Paths.SettingsFile
	if settingsPath == "" {
		settingsPath = filepath.Join(userRoot, "settings.json")
	}

	store := settings.NewStore(e.logger, e.dryRun)
	doc := store.Load(settingsPath)
	store.Apply(doc, e.cfg.Settings.Overrides)
	if err := store.Save(settingsPath, doc); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if e.dryRun {
		e.logger.Info("dry-run complete, no changes applied", "files_would_change", total)
	} else if total > 0 {
		e.logger.Info("setup completed", "files_updated", total)
	} else {
		e.logger.Info("setup completed, no file changes")
	}

	return nil
}

// cleanup removes the fetched tree unless the caller asked to keep it.
// Removal failure is a warning, not a failure.
func (e *Engine) cleanup(tempDir string) {
	if e.cfg.Sync.KeepTemp {
		e.logger.Info("keeping fetched tree", "path", tempDir)
		return
	}
	if err := os.RemoveAll(tempDir); err != nil {
		e.logger.Warn("failed to remove temporary directory", "path", tempDir, "error", err)
	}
}
