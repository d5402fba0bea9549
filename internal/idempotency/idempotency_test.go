package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.Acquire(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Acquire(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Release(ctx, "pay-1"))

	ok, err = m.Acquire(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.now = func() time.Time { return now }

	ok, _ := m.Acquire(ctx, "pay-1", time.Minute)
	require.True(t, ok)

	now = now.Add(59 * time.Second)
	ok, _ = m.Acquire(ctx, "pay-1", time.Minute)
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = m.Acquire(ctx, "pay-1", time.Minute)
	assert.True(t, ok)
}

func TestMemory_ConcurrentAcquire(t *testing.T) {
	m := NewMemory()

	var (
		wg  sync.WaitGroup
		won atomic.Int32
	)

	for range 32 {
		wg.Go(func() {
			if ok, _ := m.Acquire(context.Background(), "pay-1", time.Minute); ok {
				won.Add(1)
			}
		})
	}

	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
}
