package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/chartmotion/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := "test:" + Hash([]byte(t.Name()))

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get(new key) hit=%v err=%v, want miss", hit, err)
	}
	if err := c.Set(ctx, key, []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, key, []byte("v2"), 0); err != nil {
		t.Fatalf("Set(no ttl): %v", err)
	}
	if data, _, _ := c.Get(ctx, key); string(data) != "v2" {
		t.Errorf("Get() after overwrite = %q", data)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get() after Delete should miss")
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, c)
}

func TestFileCacheExpiryAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_ = c.Set(ctx, "old", []byte("x"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	_ = c.Set(ctx, "a", []byte("1"), time.Hour)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	n, err := c.Clear()
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v, want 2", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "k", []byte("x"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("CHARTMOTION_REDIS_ADDR")
	if addr == "" {
		t.Skip("CHARTMOTION_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr, Prefix: "chartmotion-test:"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exercise(t, c)
	if _, err := c.Clear(context.Background()); err != nil {
		t.Errorf("Clear: %v", err)
	}
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("CHARTMOTION_MONGO_URI")
	if uri == "" {
		t.Skip("CHARTMOTION_MONGO_URI not set")
	}
	c, err := NewMongoCache(context.Background(), MongoConfig{URI: uri, Collection: "cache_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exercise(t, c)
	if _, err := c.Clear(context.Background()); err != nil {
		t.Errorf("Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if n := len(Hash(nil)); n != 64 {
		t.Errorf("len(Hash) = %d, want 64", n)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	s1 := k.SceneKey("abc", SceneKeyOpts{Frame: 0})
	s2 := k.SceneKey("abc", SceneKeyOpts{Frame: 1})
	if s1 == s2 {
		t.Error("frames should key separately")
	}
	if !strings.HasPrefix(s1, "scene:") {
		t.Errorf("SceneKey = %q, want scene: prefix", s1)
	}

	a1 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "json"})
	if a1 == a2 {
		t.Error("formats should key separately")
	}
	if a1 == s1 {
		t.Error("artifact and scene keys should differ")
	}
}

func TestScopedKeyer(t *testing.T) {
	k := NewScopedKeyer(nil, "session:42:")
	if got := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "session:42:artifact:") {
		t.Errorf("ArtifactKey = %q", got)
	}
	want := "session:42:" + NewDefaultKeyer().SceneKey("c", SceneKeyOpts{})
	if got := k.SceneKey("c", SceneKeyOpts{}); got != want {
		t.Errorf("SceneKey = %q, want %q", got, want)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, miss, bytes int
	types             []string
}

func (h *countingHooks) OnCacheHit(_ context.Context, kt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
	h.types = append(h.types, kt)
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.miss++
}

func (h *countingHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bytes += size
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(Instrument(fc))
	ctx := context.Background()
	key := NewScopedKeyer(nil, "s:").ArtifactKey("x", ArtifactKeyOpts{Format: "svg"})

	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("12345"), 0)
	_, _, _ = c.Get(ctx, key)

	if hooks.hits != 1 || hooks.miss != 1 || hooks.bytes != 5 {
		t.Errorf("hooks = %d hits, %d misses, %d bytes", hooks.hits, hooks.miss, hooks.bytes)
	}
	if len(hooks.types) != 1 || hooks.types[0] != "artifact" {
		t.Errorf("key types = %v, want [artifact]", hooks.types)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message = %q", err.Error())
	}
	if !IsNetwork(err) || IsNetwork(errors.New("corrupt entry")) {
		t.Error("IsNetwork should match only network failures")
	}
	if IsRetryable(errors.New("corrupt entry")) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, true, 1, false},
		{"permanent error", 5, false, 1, true},
		{"recovers", 2, true, 3, false},
		{"gives up", 5, true, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(ErrNetwork)
					}
					return errors.New("corrupt entry")
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
