package editor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		input   string
		want    Channel
		wantErr bool
	}{
		{input: "stable", want: ChannelStable},
		{input: "insiders", want: ChannelInsiders},
		{input: "", wantErr: true},
		{input: "nightly", wantErr: true},
		{input: "Stable", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChannel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseChannel(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChannel(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseChannel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestChannelCommand(t *testing.T) {
	if got := ChannelStable.Command(); got != "code" {
		t.Errorf("stable command = %q, want code", got)
	}
	if got := ChannelInsiders.Command(); got != "code-insiders" {
		t.Errorf("insiders command = %q, want code-insiders", got)
	}
}

func TestUserConfigRoot(t *testing.T) {
	stable, err := UserConfigRoot(ChannelStable)
	if err != nil {
		t.Fatal(err)
	}
	insiders, err := UserConfigRoot(ChannelInsiders)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(stable) != "User" || filepath.Base(insiders) != "User" {
		t.Errorf("roots must end in User: %q, %q", stable, insiders)
	}
	if !strings.Contains(stable, string(filepath.Separator)+"Code"+string(filepath.Separator)) {
		t.Errorf("stable root %q must contain the Code directory", stable)
	}
	if !strings.Contains(insiders, "Code - Insiders") {
		t.Errorf("insiders root %q must contain the Code - Insiders directory", insiders)
	}

	if runtime.GOOS != "windows" {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(stable, home) {
			t.Errorf("stable root %q must live under the home directory", stable)
		}
	}
}

func TestCheckMinVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		min     string
		wantErr bool
	}{
		{name: "above minimum", version: "1.95.0", min: "1.90.0"},
		{name: "equal to minimum", version: "1.90.0", min: "1.90.0"},
		{name: "below minimum", version: "1.89.1", min: "1.90.0", wantErr: true},
		{name: "empty minimum disables gate", version: "0.0.1", min: ""},
		{name: "v prefix accepted", version: "v1.95.0", min: "1.90.0"},
		{name: "unparseable version", version: "not-a-version", min: "1.90.0", wantErr: true},
		{name: "major version wins", version: "2.0.0", min: "1.99.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMinVersion(tt.version, tt.min)
			if tt.wantErr && err == nil {
				t.Errorf("CheckMinVersion(%q, %q) expected error", tt.version, tt.min)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CheckMinVersion(%q, %q): %v", tt.version, tt.min, err)
			}
		})
	}
}

func TestValidVersion(t *testing.T) {
	if !ValidVersion("1.90.0") {
		t.Error("1.90.0 must be valid")
	}
	if !ValidVersion("v1.90.0") {
		t.Error("v1.90.0 must be valid")
	}
	if ValidVersion("latest") {
		t.Error("latest must be invalid")
	}
}

// fakeEditor writes an executable script that mimics the editor CLI's
// --version output (version on the first line, then commit and arch).
func fakeEditor(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake editor script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-code")
	script := "#!/bin/sh\nprintf '" + output + "'\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLIProber_Version(t *testing.T) {
	bin := fakeEditor(t, `1.95.2\ne170252f762678dec6ca2cc69aba1570769a5d39\nx64\n`)

	p := NewCLIProber(bin)
	version, err := p.Version(context.Background(), ChannelStable)
	if err != nil {
		t.Fatal(err)
	}
	if version != "1.95.2" {
		t.Errorf("version = %q, want 1.95.2", version)
	}
}

func TestCLIProber_MissingBinary(t *testing.T) {
	p := NewCLIProber(filepath.Join(t.TempDir(), "no-such-editor"))
	if _, err := p.Version(context.Background(), ChannelStable); err == nil {
		t.Error("expected error for missing editor binary")
	}
}

func TestCLIProber_EmptyOutput(t *testing.T) {
	bin := fakeEditor(t, "")

	p := NewCLIProber(bin)
	if _, err := p.Version(context.Background(), ChannelStable); err == nil {
		t.Error("expected error for empty --version output")
	}
}
