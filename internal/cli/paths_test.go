package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}

	previews, err := previewDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(custom, appName, "previews"); previews != want {
		t.Errorf("previewDir() = %q, want %q", previews, want)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "scenes/house.json", "scenes/house"},
		{"", "scenes/house.layout.json", "scenes/house"},
		{"", "house.toml", "house"},
		{"out/front.svg", "house.json", "out/front"},
		{"out/front", "house.json", "out/front"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := map[string]string{
		"svg":  "house.svg",
		"png":  "house.png",
		"stl":  "house.stl",
		"json": "house.cutlist.json",
	}
	for format, want := range tests {
		if got := artifactPath("house", format); got != want {
			t.Errorf("artifactPath(%q) = %q, want %q", format, got, want)
		}
	}
}
