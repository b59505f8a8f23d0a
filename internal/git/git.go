package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Client provides git operations for retrieving the assets repository
type Client interface {
	// Installed reports whether the git command is available. Absence is a
	// fatal precondition failure before any fetch is attempted.
	Installed() error
	// Fetch produces a local copy of the repository at the given ref in
	// destDir, which must exist and be empty.
	Fetch(ctx context.Context, url, ref, destDir string) error
}

// ShellClient implements Client by shelling out to the git command
type ShellClient struct{}

// NewShellClient creates a new git client that uses the git command
func NewShellClient() *ShellClient {
	return &ShellClient{}
}

// Installed checks that the git binary is on PATH
func (c *ShellClient) Installed() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but was not found on PATH: %w", err)
	}
	return nil
}

// Fetch clones the repository at the given ref into destDir.
// Strategy:
//  1. Try a shallow clone with --branch (works for branches and tags)
//  2. If that fails, fall back to a full clone plus a direct checkout,
//     which handles commit hashes
func (c *ShellClient) Fetch(ctx context.Context, url, ref, destDir string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--branch", ref, url, destDir)
	shallowErr := runCommand(cmd)
	if shallowErr == nil {
		return nil
	}

	// A failed clone can leave a partial checkout behind.
	if err := resetDir(destDir); err != nil {
		return fmt.Errorf("failed to reset fetch directory: %w", err)
	}

	cmd = exec.CommandContext(ctx, "git", "clone", url, destDir)
	if err := runCommand(cmd); err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	cmd = exec.CommandContext(ctx, "git", "-C", destDir, "checkout", "-f", ref)
	if err := runCommand(cmd); err != nil {
		return fmt.Errorf("git checkout failed for ref %q: %w", ref, err)
	}

	return nil
}

// resetDir removes destDir and recreates it empty
func resetDir(destDir string) error {
	if err := os.RemoveAll(destDir); err != nil {
		return err
	}
	return os.MkdirAll(destDir, 0755)
}

// runCommand executes a command and returns an error with its output on failure
func runCommand(cmd *exec.Cmd) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
