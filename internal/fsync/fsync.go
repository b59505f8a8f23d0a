package fsync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Syncer copies files from a source tree to a destination tree, skipping
// files whose content is already identical. In dry-run mode every decision
// is still computed from real fingerprints but nothing on disk is touched.
type Syncer struct {
	logger *slog.Logger
	dryRun bool
}

// NewSyncer creates a new file synchronizer
func NewSyncer(logger *slog.Logger, dryRun bool) *Syncer {
	return &Syncer{
		logger: logger,
		dryRun: dryRun,
	}
}

// Sync mirrors srcRoot into dstRoot and returns the number of files that
// were copied (or would be copied in dry-run mode).
//
// An empty selection syncs the whole tree. A non-empty selection restricts
// the sync to the named entries under srcRoot: a directory is synced
// recursively, a file is copied if changed, and a missing entry is skipped
// with a warning. A missing srcRoot is not an error; it yields zero changes.
func (s *Syncer) Sync(srcRoot, dstRoot string, selection []string) (int, error) {
	if _, err := os.Stat(srcRoot); err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("sync source does not exist, nothing to do", "source", srcRoot)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat sync source %s: %w", srcRoot, err)
	}

	if len(selection) == 0 {
		return s.syncTree(srcRoot, dstRoot)
	}

	changed := 0
	for _, name := range selection {
		src := filepath.Join(srcRoot, name)
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn("selected item not found in source, skipping", "item", name, "source", srcRoot)
				continue
			}
			return changed, fmt.Errorf("failed to stat selected item %s: %w", src, err)
		}

		if info.IsDir() {
			n, err := s.syncTree(src, filepath.Join(dstRoot, name))
			changed += n
			if err != nil {
				return changed, err
			}
		} else {
			n, err := s.copyIfChanged(src, filepath.Join(dstRoot, name))
			changed += n
			if err != nil {
				return changed, err
			}
		}
	}

	return changed, nil
}

// syncTree mirrors every directory and file under srcRoot into dstRoot.
// Hidden files and directories (names starting with ".") are skipped so
// that trees fetched from version control never leak repository metadata.
func (s *Syncer) syncTree(srcRoot, dstRoot string) (int, error) {
	changed := 0

	err := filepath.Walk(srcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if path != srcRoot && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstRoot, rel)

		if info.IsDir() {
			if s.dryRun {
				return nil
			}
			return os.MkdirAll(dst, 0755)
		}

		n, err := s.copyIfChanged(path, dst)
		changed += n
		return err
	})

	if err != nil {
		return changed, fmt.Errorf("failed to sync tree %s: %w", srcRoot, err)
	}

	return changed, nil
}

// copyIfChanged copies src to dst unless the destination already has
// identical content. It returns 1 when a copy happened (or would happen
// in dry-run mode) and 0 otherwise.
func (s *Syncer) copyIfChanged(src, dst string) (int, error) {
	srcHash, err := fingerprint(src)
	if err != nil {
		return 0, fmt.Errorf("failed to fingerprint %s: %w", src, err)
	}

	if _, err := os.Stat(dst); err == nil {
		dstHash, err := fingerprint(dst)
		if err != nil {
			s.logger.Warn("cannot fingerprint destination, leaving it untouched", "dest", dst, "error", err)
			return 0, nil
		}
		if dstHash == srcHash {
			s.logger.Debug("file unchanged", "dest", dst)
			return 0, nil
		}
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to stat destination %s: %w", dst, err)
	}

	if s.dryRun {
		s.logger.Info("[dry-run] would copy", "source", src, "dest", dst)
		return 1, nil
	}

	s.logger.Info("copying file", "source", src, "dest", dst)
	if err := copyFile(src, dst); err != nil {
		return 0, fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return 1, nil
}

// copyFile copies a file from src to dst with atomic write
func copyFile(src, dst string) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	// Create temp file in destination directory
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".devsetup-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		_ = tmpFile.Close()
		return err
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Chmod(srcInfo.Mode()); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpPath, dst); err != nil {
		return err
	}

	return nil
}

// fingerprint computes the SHA256 hash of a file's content
func fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
