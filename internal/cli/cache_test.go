package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/chartmotion/pkg/cache"
	"github.com/matzehuels/chartmotion/pkg/errors"
)

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/tmp/xdg-cache", "chartmotion"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".cache", "chartmotion"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-config", "chartmotion"); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     CacheConfig
		noCache bool
		wantNil bool
	}{
		{"file", CacheConfig{Backend: BackendFile, Dir: dir}, false, false},
		{"none", CacheConfig{Backend: BackendNone}, false, true},
		{"no-cache flag", CacheConfig{Backend: BackendFile, Dir: dir}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer c.Close()
			_, isNull := c.(*cache.NullCache)
			if isNull != tt.wantNil {
				t.Errorf("newCache() = %T, null = %v, want %v", c, isNull, tt.wantNil)
			}
			if fc, ok := c.(*cache.FileCache); ok && fc.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", fc.Dir(), dir)
			}
		})
	}
}

func TestBackendError(t *testing.T) {
	down := cache.Retryable(fmt.Errorf("%w: redis localhost:6379: connection refused", cache.ErrNetwork))
	if err := backendError("redis", down); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("unreachable backend error = %v, want %s", err, errors.ErrCodeNetwork)
	}
	if err := backendError("mongo", fmt.Errorf("mongo ttl index: denied")); errors.GetCode(err) != errors.ErrCodeInternal {
		t.Errorf("index error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInternal)
	}
}
