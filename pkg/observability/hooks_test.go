package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnCollideStart(ctx, "wales.obj", 0.01)
	p.OnCollideComplete(ctx, "wales.obj", 42, time.Second, nil)
	p.OnVariationStart(ctx, "a.obj", "b.obj")
	p.OnVariationCandidate(ctx, 12, true)
	p.OnVariationComplete(ctx, 3, time.Second, nil)
	p.OnRepairPass(ctx, 1, 5)
	p.OnRepairComplete(ctx, "converged", 7, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "collision-string")
	c.OnCacheMiss(ctx, "collision-string")
	c.OnCacheSet(ctx, "collision-string", 1024)

	// Dataset hooks
	d := NoopDatasetHooks{}
	d.OnRecordWrite(ctx, "jsonl", 256)
	d.OnRecordError(ctx, "mongo", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Dataset().(NoopDatasetHooks); !ok {
		t.Error("Dataset() should return NoopDatasetHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customDataset := &testDatasetHooks{}
	SetDatasetHooks(customDataset)
	if Dataset() != customDataset {
		t.Error("SetDatasetHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testDatasetHooks struct{ NoopDatasetHooks }
