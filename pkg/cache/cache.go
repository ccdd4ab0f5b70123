// Package cache stores rendered chartmotion artifacts.
//
// # Overview
//
// Rendering a chart document is deterministic, so every stage output can be
// cached under a content hash of its input. The [Cache] interface is a plain
// byte store with per-entry TTLs; [Keyer] decides how keys are built so
// hosted deployments can namespace them per tenant ([ScopedKeyer]).
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for several API instances
//   - [MongoCache]: document-store cache with a TTL index
//
// Wrap any backend with [Instrument] to report hits, misses and writes to
// the registered observability hooks.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(sceneHash, cache.ArtifactKeyOpts{Format: "svg"})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data
//	}
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/chartmotion/pkg/observability"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLs per cached stage.
const (
	TTLScene    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key prefixes, also used as the key type reported to cache hooks.
const (
	PrefixScene    = "scene"
	PrefixArtifact = "artifact"
)

// =============================================================================
// Keys
// =============================================================================

// SceneKeyOpts are the inputs besides the chart that change a scene.
type SceneKeyOpts struct {
	Frame  int     `json:"frame"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the scene that change an artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Background string `json:"background,omitempty"`
	Title      bool   `json:"title,omitempty"`
	Font       string `json:"font,omitempty"`
	FPS        int    `json:"fps,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	SceneKey(chartHash string, opts SceneKeyOpts) string
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into "prefix:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SceneKey(chartHash string, opts SceneKeyOpts) string {
	return hashKey(PrefixScene, chartHash, opts)
}

func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey(PrefixArtifact, sceneHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, for tenant isolation:
//
//	sessionKeyer := cache.NewScopedKeyer(nil, "session:"+id+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SceneKey(chartHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(chartHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}

// hashKey hashes the JSON encoding of parts under prefix.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	Cache
}

// Instrument reports every Get and Set on c to observability.Cache().
func Instrument(c Cache) Cache {
	if _, ok := c.(instrumented); ok {
		return c
	}
	return instrumented{c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType is the last prefix segment before the hash.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
