package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Resolver hooks
	r := NoopResolverHooks{}
	r.OnResolveStart(ctx, 4)
	r.OnResolveComplete(ctx, 12, time.Second, nil)
	r.OnActionSkipped(ctx, "expand", "pkg/util")

	// Builder hooks
	b := NoopBuilderHooks{}
	b.OnBuildStart(ctx, 12)
	b.OnBuildComplete(ctx, 12, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "matrix")
	c.OnCacheSet(ctx, "matrix", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/v1/sessions")
	h.OnResponse(ctx, "GET", "/v1/sessions", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Resolver().(NoopResolverHooks); !ok {
		t.Error("Resolver() should return NoopResolverHooks by default")
	}
	if _, ok := Builder().(NoopBuilderHooks); !ok {
		t.Error("Builder() should return NoopBuilderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customResolver := &testResolverHooks{}
	SetResolverHooks(customResolver)
	if Resolver() != customResolver {
		t.Error("SetResolverHooks should set custom hooks")
	}

	customBuilder := &testBuilderHooks{}
	SetBuilderHooks(customBuilder)
	if Builder() != customBuilder {
		t.Error("SetBuilderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Resolver().(NoopResolverHooks); !ok {
		t.Error("Reset() should restore NoopResolverHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testResolverHooks{}
	SetResolverHooks(custom)

	// Setting nil should be ignored
	SetResolverHooks(nil)

	if Resolver() != custom {
		t.Error("SetResolverHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testResolverHooks struct{ NoopResolverHooks }
type testBuilderHooks struct{ NoopBuilderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
