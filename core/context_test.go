package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	id, ok := getRunID(ctx)
	assert.False(t, ok)
	assert.Zero(t, id)
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	ctx = withRunID(ctx, 12345)

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d", id)
			runID, ok := getRunID(ctx)
			assert.True(t, ok, "goroutine %d", id)
			assert.Equal(t, int64(12345), runID, "goroutine %d", id)
		}(i)
	}
	wg.Wait()
}

// TestContextIsolation tests that derived contexts do not leak into their siblings.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	ctx1 := withRunID(base, 1)
	ctx2 := withRunID(base, 2)
	ctx3 := WithSuppressHeader(base)

	id1, ok1 := getRunID(ctx1)
	assert.True(t, ok1)
	assert.Equal(t, int64(1), id1)
	assert.False(t, shouldSuppressHeader(ctx1))

	id2, _ := getRunID(ctx2)
	assert.Equal(t, int64(2), id2)

	_, ok3 := getRunID(ctx3)
	assert.False(t, ok3)
	assert.True(t, shouldSuppressHeader(ctx3))
}

func TestContextWrongValueType(t *testing.T) {
	ctx := context.WithValue(context.Background(), suppressHeaderKey, "yes")
	ctx = context.WithValue(ctx, runIDKey, 42)
	assert.False(t, shouldSuppressHeader(ctx))
	_, ok := getRunID(ctx)
	assert.False(t, ok)
}
