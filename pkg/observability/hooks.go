// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution, cache operations, and repair runs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnCollideStart(ctx, filename, epsilon)
//	// ... build the graph ...
//	observability.Pipeline().OnCollideComplete(ctx, filename, edges, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the collision and generation pipeline.
type PipelineHooks interface {
	// Collision graph events
	OnCollideStart(ctx context.Context, filename string, epsilon float32)
	OnCollideComplete(ctx context.Context, filename string, edges int, duration time.Duration, err error)

	// Variation events
	OnVariationStart(ctx context.Context, fileA, fileB string)
	OnVariationCandidate(ctx context.Context, nodes int, valid bool)
	OnVariationComplete(ctx context.Context, accepted int, duration time.Duration, err error)

	// Repair events
	OnRepairPass(ctx context.Context, pass, corrections int)
	OnRepairComplete(ctx context.Context, state string, passes int, duration time.Duration, err error)
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
// Dataset Hooks
// =============================================================================

// DatasetHooks receives events from dataset store operations.
type DatasetHooks interface {
	// OnRecordWrite records a persisted dataset entry.
	OnRecordWrite(ctx context.Context, store string, size int)

	// OnRecordError records a failed dataset write.
	OnRecordError(ctx context.Context, store string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCollideStart(context.Context, string, float32) {}
func (NoopPipelineHooks) OnCollideComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnVariationStart(context.Context, string, string)              {}
func (NoopPipelineHooks) OnVariationCandidate(context.Context, int, bool)               {}
func (NoopPipelineHooks) OnVariationComplete(context.Context, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRepairPass(context.Context, int, int) {}
func (NoopPipelineHooks) OnRepairComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopDatasetHooks is a no-op implementation of DatasetHooks.
type NoopDatasetHooks struct{}

func (NoopDatasetHooks) OnRecordWrite(context.Context, string, int) {}
func (NoopDatasetHooks) OnRecordError(context.Context, string, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	datasetHooks  DatasetHooks  = NoopDatasetHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetDatasetHooks registers custom dataset hooks.
// This should be called once at application startup before any dataset operations.
func SetDatasetHooks(h DatasetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		datasetHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Dataset returns the registered dataset hooks.
func Dataset() DatasetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return datasetHooks
}

// Reset restores all hooks to their no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	datasetHooks = NoopDatasetHooks{}
}
