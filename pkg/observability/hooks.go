// Package observability provides hooks for metrics, tracing, and logging.
//
// The transformation passes and the interpreter stay free of observability
// dependencies; the layers that drive them (CLI, API, cache) emit events
// through a hook registry with no-op defaults. Backends are registered once
// at startup by main, never by libraries, which keeps import graphs clean
// and lets deployments plug in OpenTelemetry, Prometheus, or plain logging.
//
// Usage:
//
//	func main() {
//	    observability.SetTransformHooks(&myTransformHooks{})
//	    // ... run application
//	}
//
// Callers emit events around the stages they run:
//
//	observability.Transform().OnLowerStart(ctx, path)
//	g := lower.Lower(tree, opts)
//	observability.Transform().OnLowerComplete(ctx, path, g.NodeCount(), time.Since(start), nil)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Transform Hooks
// =============================================================================

// TransformHooks receives events from the lowering and raising passes.
type TransformHooks interface {
	OnLowerStart(ctx context.Context, source string)
	OnLowerComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	OnRaiseStart(ctx context.Context, source string)
	OnRaiseComplete(ctx context.Context, source string, rootCount int, duration time.Duration, err error)
}

// =============================================================================
// Eval Hooks
// =============================================================================

// EvalHooks receives events from preview evaluations.
type EvalHooks interface {
	OnEvaluateStart(ctx context.Context, nodeCount int, seed uint64)
	OnEvaluateComplete(ctx context.Context, sampleCount int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTransformHooks is a no-op implementation of TransformHooks.
type NoopTransformHooks struct{}

func (NoopTransformHooks) OnLowerStart(context.Context, string) {}
func (NoopTransformHooks) OnLowerComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopTransformHooks) OnRaiseStart(context.Context, string) {}
func (NoopTransformHooks) OnRaiseComplete(context.Context, string, int, time.Duration, error) {
}

// NoopEvalHooks is a no-op implementation of EvalHooks.
type NoopEvalHooks struct{}

func (NoopEvalHooks) OnEvaluateStart(context.Context, int, uint64)           {}
func (NoopEvalHooks) OnEvaluateComplete(context.Context, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	transformHooks TransformHooks = NoopTransformHooks{}
	evalHooks      EvalHooks      = NoopEvalHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetTransformHooks registers custom transform hooks.
// This should be called once at application startup.
func SetTransformHooks(h TransformHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transformHooks = h
	}
}

// SetEvalHooks registers custom evaluation hooks.
// This should be called once at application startup.
func SetEvalHooks(h EvalHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		evalHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Transform returns the registered transform hooks.
func Transform() TransformHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transformHooks
}

// Eval returns the registered evaluation hooks.
func Eval() EvalHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return evalHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	transformHooks = NoopTransformHooks{}
	evalHooks = NoopEvalHooks{}
	cacheHooks = NoopCacheHooks{}
}
