package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLayoutHooks{}
	l.OnLayoutStart(ctx, 4, 16)
	l.OnLayoutComplete(ctx, time.Second, nil)
	l.OnRenderStart(ctx, []string{"svg"})
	l.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	p := NoopPlayerHooks{}
	p.OnPlayStateChange(ctx, "session", "stopped", "playing")
	p.OnStep(ctx, "session", 0, 0, 3)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "artifact", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Player().(NoopPlayerHooks); !ok {
		t.Error("Player() should return NoopPlayerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customPlayer := &testPlayerHooks{}
	SetPlayerHooks(customPlayer)
	if Player() != customPlayer {
		t.Error("SetPlayerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
	if _, ok := Player().(NoopPlayerHooks); !ok {
		t.Error("Reset() should restore NoopPlayerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPlayerHooks{}
	SetPlayerHooks(custom)
	SetPlayerHooks(nil)

	if Player() != custom {
		t.Error("SetPlayerHooks(nil) should be ignored")
	}

	Reset()
}

type testLayoutHooks struct{ NoopLayoutHooks }
type testPlayerHooks struct{ NoopPlayerHooks }
type testCacheHooks struct{ NoopCacheHooks }
