package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// Channel identifies the editor release channel
type Channel string

const (
	ChannelStable   Channel = "stable"
	ChannelInsiders Channel = "insiders"
)

// ParseChannel validates a channel string
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelStable, ChannelInsiders:
		return Channel(s), nil
	default:
		return "", fmt.Errorf("invalid editor channel: %s (must be stable or insiders)", s)
	}
}

// Command returns the CLI command name for the channel
func (c Channel) Command() string {
	if c == ChannelInsiders {
		return "code-insiders"
	}
	return "code"
}

// configDirName returns the per-user configuration directory name for the
// channel; it is the same on every platform.
func (c Channel) configDirName() string {
	if c == ChannelInsiders {
		return "Code - Insiders"
	}
	return "Code"
}

// UserConfigRoot resolves the editor's user configuration directory for the
// channel on the current platform. Three fixed cases: macOS under
// Application Support, Windows under APPDATA, everything else under
// ~/.config.
func UserConfigRoot(channel Channel) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", channel.configDirName(), "User"), nil

	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(appData, channel.configDirName(), "User"), nil

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, ".config", channel.configDirName(), "User"), nil
	}
}

// CheckMinVersion returns an error if version is below min. An empty min
// disables the check. Versions are compared as semver; a leading "v" is
// optional on either side.
func CheckMinVersion(version, min string) error {
	if min == "" {
		return nil
	}

	v := canonical(version)
	m := canonical(min)
	if !semver.IsValid(v) {
		return fmt.Errorf("cannot parse editor version %q", version)
	}
	if !semver.IsValid(m) {
		return fmt.Errorf("cannot parse minimum version %q", min)
	}

	if semver.Compare(v, m) < 0 {
		return fmt.Errorf("editor version %s is below the required minimum %s", version, min)
	}
	return nil
}

// ValidVersion reports whether s parses as a semver version, with or
// without a leading "v".
func ValidVersion(s string) bool {
	return semver.IsValid(canonical(s))
}

// canonical normalizes a version string for the semver package, which
// requires a leading "v".
func canonical(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "v") {
		return "v" + s
	}
	return s
}
