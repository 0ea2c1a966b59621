// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: libraries emit events through the registered
// hooks, and the defaults do nothing. Consumers register hooks at startup to
// forward events to their backend of choice.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetPlayerHooks(&myPlayerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, rows, measures)
//	// ... compute layout ...
//	observability.Layout().OnLayoutComplete(ctx, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout and render stages.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, rows, measures int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Player Hooks
// =============================================================================

// PlayerHooks receives events from playback sessions.
type PlayerHooks interface {
	// OnPlayStateChange records a transition between stopped, playing and paused.
	OnPlayStateChange(ctx context.Context, session, from, to string)

	// OnStep records one sequence step: the measure and column played and
	// the number of notes triggered.
	OnStep(ctx context.Context, session string, measure, column, notes int)
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

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, int, int)                          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, time.Duration, error)           {}
func (NoopLayoutHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopLayoutHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopPlayerHooks is a no-op implementation of PlayerHooks.
type NoopPlayerHooks struct{}

func (NoopPlayerHooks) OnPlayStateChange(context.Context, string, string, string) {}
func (NoopPlayerHooks) OnStep(context.Context, string, int, int, int)             {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	playerHooks PlayerHooks = NoopPlayerHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetPlayerHooks registers custom player hooks.
func SetPlayerHooks(h PlayerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		playerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Player returns the registered player hooks.
func Player() PlayerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return playerHooks
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
	layoutHooks = NoopLayoutHooks{}
	playerHooks = NoopPlayerHooks{}
	cacheHooks = NoopCacheHooks{}
}
