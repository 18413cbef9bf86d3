package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClampsSize(t *testing.T) {
	assert.Equal(t, 1, New("io", 0).Size())
	assert.Equal(t, 3, New("io", 3).Size())
	assert.Equal(t, "io", New("io", 3).Name())
}

func TestDoRunsInline(t *testing.T) {
	p := New("io", 1)
	boom := errors.New("boom")

	ran := false
	err := p.Do(context.Background(), func() error {
		ran = true
		return boom
	})
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)

	// the slot was released
	require.NoError(t, p.Do(context.Background(), func() error { return nil }))
}

func TestDoCancelled(t *testing.T) {
	p := New("io", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := p.Do(ctx, func() error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestGoBoundsConcurrency(t *testing.T) {
	const size = 3
	p := New("compute", size)

	var (
		wg      sync.WaitGroup
		running atomic.Int32
		peak    atomic.Int32
		total   atomic.Int32
	)

	for i := 0; i < 20; i++ {
		require.NoError(t, p.Go(context.Background(), &wg, func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			total.Add(1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(20), total.Load())
	assert.LessOrEqual(t, peak.Load(), int32(size))
}

func TestGoWaitsForSlotUntilCancelled(t *testing.T) {
	p := New("compute", 1)
	var wg sync.WaitGroup

	release := make(chan struct{})
	require.NoError(t, p.Go(context.Background(), &wg, func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Go(ctx, &wg, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	wg.Wait()
}
