package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/discograph/pkg/cache"
)

func TestCacheClearCommand(t *testing.T) {
	setupCLI(t)
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := countFiles(dir)
	if err != nil || n != 3 {
		t.Fatalf("countFiles = %d, %v; want 3", n, err)
	}

	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n, _ := countFiles(dir); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
}

func TestCacheClearEmpty(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear on a missing dir: %v", err)
	}
}

func TestCountFilesNested(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ab"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"x.json", filepath.Join("ab", "y.json")} {
		if err := os.WriteFile(filepath.Join(dir, p), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := countFiles(dir); err != nil || n != 2 {
		t.Errorf("countFiles = %d, %v; want 2", n, err)
	}
}
