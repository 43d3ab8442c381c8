package cli

import (
	"context"
	"os"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/PeterZhouSZ/string2shape/pkg/cache"
	"github.com/PeterZhouSZ/string2shape/pkg/config"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(os.Stderr, log.InfoLevel)
	root := c.RootCommand()

	want := []string{
		"collide", "variations", "repair", "materialize",
		"graph", "dataset", "cache", "serve", "completion",
	}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestSetVersion(t *testing.T) {
	old := version
	defer func() { version = old }()

	SetVersion("v1.2.3")
	if version != "v1.2.3" {
		t.Errorf("version = %q, want %q", version, "v1.2.3")
	}

	// Empty values keep the current version.
	SetVersion("")
	if version != "v1.2.3" {
		t.Errorf("version = %q after empty SetVersion, want %q", version, "v1.2.3")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(os.Stderr, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want %v", c.Logger.GetLevel(), log.DebugLevel)
	}
}

func TestNewCacheNull(t *testing.T) {
	cfg := config.Default().Cache

	store, err := newCache(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("default backend should be the null cache, got %T", store)
	}
}

func TestNewCacheNoCacheWins(t *testing.T) {
	cfg := config.Default().Cache
	cfg.Backend = "file"
	cfg.Dir = t.TempDir()

	store, err := newCache(context.Background(), cfg, true)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("--no-cache should force the null cache, got %T", store)
	}
}

func TestNewCacheFile(t *testing.T) {
	cfg := config.Default().Cache
	cfg.Backend = "file"
	cfg.Dir = t.TempDir()

	store, err := newCache(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("file backend should build a file cache, got %T", store)
	}
}
