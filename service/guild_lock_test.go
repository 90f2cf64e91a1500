package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildLocks_MutualExclusion(t *testing.T) {
	ctx := context.Background()
	locks := NewGuildLocks()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(ctx, 42)
			if err != nil {
				t.Error(err)
				return
			}
			counter++
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestGuildLocks_DifferentGuildsDoNotContend(t *testing.T) {
	ctx := context.Background()
	locks := NewGuildLocks()

	release1, err := locks.Acquire(ctx, 1)
	require.NoError(t, err)
	defer release1()

	// Guild 2's lock is free even while guild 1's is held
	done := make(chan struct{})
	go func() {
		release2, err := locks.Acquire(ctx, 2)
		if err == nil {
			release2()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquire on a different guild blocked")
	}
}

func TestGuildLocks_AcquireHonorsCancellation(t *testing.T) {
	locks := NewGuildLocks()

	release, err := locks.Acquire(context.Background(), 42)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = locks.Acquire(ctx, 42)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The lock is still usable after the cancelled attempt
	release()
	release2, err := locks.Acquire(context.Background(), 42)
	require.NoError(t, err)
	release2()
}
