package editor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Prober detects the installed editor version for a channel
type Prober interface {
	// Version returns the installed editor version, or an error if the
	// editor cannot be found or does not report one.
	Version(ctx context.Context, channel Channel) (string, error)
}

// CLIProber implements Prober by running the editor's CLI with --version
type CLIProber struct {
	// command overrides the channel's default CLI command when non-empty
	command string
}

// NewCLIProber creates a prober. An empty command uses the channel default
// (code or code-insiders).
func NewCLIProber(command string) *CLIProber {
	return &CLIProber{command: command}
}

// Version runs the editor CLI with --version and returns the first output
// line, which carries the version number.
func (p *CLIProber) Version(ctx context.Context, channel Channel) (string, error) {
	bin := p.command
	if bin == "" {
		bin = channel.Command()
	}

	cmd := exec.CommandContext(ctx, bin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", bin, err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	version := strings.TrimSpace(line)
	if version == "" {
		return "", fmt.Errorf("%s --version produced no output", bin)
	}

	return version, nil
}
