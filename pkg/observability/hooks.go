// Package observability lets applications attach metrics or tracing to
// chartmotion without the library depending on a backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	observability.SetPipelineHooks(&promPipeline{})
//	observability.SetCacheHooks(&promCache{})
//	observability.SetMotionHooks(&promMotion{})
//
// Libraries emit events through the accessors:
//
//	observability.Pipeline().OnSceneStart(ctx, mark, frame)
//	// ... build the scene ...
//	observability.Pipeline().OnSceneComplete(ctx, mark, shapes, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook interfaces
// =============================================================================

// PipelineHooks receives events from the chart pipeline.
type PipelineHooks interface {
	// Chart document decoding.
	OnLoadStart(ctx context.Context, format string)
	OnLoadComplete(ctx context.Context, format string, series int, duration time.Duration, err error)

	// Geometry computation for one frame.
	OnSceneStart(ctx context.Context, mark string, frame int)
	OnSceneComplete(ctx context.Context, mark string, shapes int, duration time.Duration, err error)

	// Serialization into output formats.
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from instrumented caches.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// MotionHooks receives events from chart animators. Counts are marks, axis
// ticks excluded.
type MotionHooks interface {
	OnTransition(ctx context.Context, frame, entering, updating, exiting int)
	OnSettled(ctx context.Context, frame int, elapsed time.Duration)
}

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op implementations
// =============================================================================

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnSceneStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnSceneComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopMotionHooks struct{}

func (NoopMotionHooks) OnTransition(context.Context, int, int, int, int) {}
func (NoopMotionHooks) OnSettled(context.Context, int, time.Duration)    {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	motionHooks   MotionHooks   = NoopMotionHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetMotionHooks registers animator hooks. nil is ignored.
func SetMotionHooks(h MotionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		motionHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func Motion() MotionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return motionHooks
}

func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	motionHooks = NoopMotionHooks{}
	httpHooks = NoopHTTPHooks{}
}
