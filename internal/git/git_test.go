package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a local repo with an initial commit on the given branch.
func initRepo(t *testing.T, dir, branch string) {
	t.Helper()
	cmds := [][]string{
		{"git", "init", "-b", branch, dir},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
	}
	for _, args := range cmds {
		if out, err := exec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
			t.Fatalf("%v: %s", err, out)
		}
	}
}

// commitFile creates or overwrites a file and commits it.
func commitFile(t *testing.T, repoDir, content, msg string) {
	t.Helper()
	const name = "agents.md"
	if err := os.WriteFile(filepath.Join(repoDir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"git", "-C", repoDir, "add", name},
		{"git", "-C", repoDir, "commit", "-m", msg},
	} {
		if out, err := exec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
			t.Fatalf("%v: %s", err, out)
		}
	}
}

func headCommit(t *testing.T, repoDir string) string {
	t.Helper()
	out, err := exec.Command("git", "-C", repoDir, "rev-parse", "HEAD").Output()
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(out))
}

func TestInstalled(t *testing.T) {
	// The test suite itself drives git, so it must be present here.
	if err := NewShellClient().Installed(); err != nil {
		t.Fatalf("git expected on PATH: %v", err)
	}
}

func TestFetch_Branch(t *testing.T) {
	ctx := context.Background()

	remoteDir := t.TempDir()
	initRepo(t, remoteDir, "main")
	commitFile(t, remoteDir, "version1\n", "Initial commit")

	destDir := filepath.Join(t.TempDir(), "fetch")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}

	client := NewShellClient()
	if err := client.Fetch(ctx, remoteDir, "main", destDir); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "agents.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "version1\n" {
		t.Fatalf("expected version1, got %q", string(got))
	}
}

func TestFetch_Tag(t *testing.T) {
	ctx := context.Background()

	remoteDir := t.TempDir()
	initRepo(t, remoteDir, "main")
	commitFile(t, remoteDir, "tagged\n", "Tagged commit")
	if out, err := exec.Command("git", "-C", remoteDir, "tag", "v1.0").CombinedOutput(); err != nil {
		t.Fatalf("tag: %v: %s", err, out)
	}

	// Move main ahead of the tag.
	commitFile(t, remoteDir, "after-tag\n", "Post-tag commit")

	destDir := filepath.Join(t.TempDir(), "fetch")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}

	client := NewShellClient()
	if err := client.Fetch(ctx, remoteDir, "v1.0", destDir); err != nil {
		t.Fatalf("tag fetch: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "agents.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "tagged\n" {
		t.Errorf("expected tagged content, got %q", string(got))
	}
}

func TestFetch_CommitHash(t *testing.T) {
	ctx := context.Background()

	remoteDir := t.TempDir()
	initRepo(t, remoteDir, "main")
	commitFile(t, remoteDir, "first\n", "First commit")
	first := headCommit(t, remoteDir)
	commitFile(t, remoteDir, "second\n", "Second commit")

	destDir := filepath.Join(t.TempDir(), "fetch")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}

	// A commit hash cannot be shallow-cloned with --branch; this exercises
	// the full-clone fallback.
	client := NewShellClient()
	if err := client.Fetch(ctx, remoteDir, first, destDir); err != nil {
		t.Fatalf("commit fetch: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "agents.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first\n" {
		t.Errorf("expected first commit content, got %q", string(got))
	}
}

func TestFetch_BadRef(t *testing.T) {
	ctx := context.Background()

	remoteDir := t.TempDir()
	initRepo(t, remoteDir, "main")
	commitFile(t, remoteDir, "content\n", "Initial commit")

	destDir := filepath.Join(t.TempDir(), "fetch")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}

	client := NewShellClient()
	if err := client.Fetch(ctx, remoteDir, "no-such-ref", destDir); err == nil {
		t.Error("expected error for unknown ref")
	}
}

func TestFetch_BadURL(t *testing.T) {
	ctx := context.Background()

	destDir := filepath.Join(t.TempDir(), "fetch")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}

	client := NewShellClient()
	err := client.Fetch(ctx, filepath.Join(t.TempDir(), "missing-repo"), "main", destDir)
	if err == nil {
		t.Error("expected error for missing repository")
	}
}
