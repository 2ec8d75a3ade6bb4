package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirsDefault(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"cache", cacheDir, filepath.Join(home, ".cache", appName)},
		{"config", configDir, filepath.Join(home, ".config", appName)},
		{"data", dataDir, filepath.Join(home, ".local", "share", appName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestXDGDirsOverride(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/custom-data")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"cache", cacheDir, filepath.Join("/tmp/custom-cache", appName)},
		{"config", configDir, filepath.Join("/tmp/custom-config", appName)},
		{"data", dataDir, filepath.Join("/tmp/custom-data", appName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
