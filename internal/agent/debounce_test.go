package agent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 1)
	var runs int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		Debouncer{Wait: 40 * time.Millisecond, Initial: time.Hour}.Loop(ctx, changes, func(context.Context) {
			atomic.AddInt32(&runs, 1)
		})
	}()

	for i := 0; i < 5; i++ {
		changes <- struct{}{}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))

	changes <- struct{}{}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestDebouncerInitialRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int32
	go Debouncer{Wait: time.Hour, Initial: 10 * time.Millisecond}.Loop(ctx, nil, func(context.Context) {
		atomic.AddInt32(&runs, 1)
	})
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}
