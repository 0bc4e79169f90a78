package agent

import (
	"context"
	"time"
)

// Debouncer turns a stream of change notifications into pipeline runs: one
// run Initial after start, then one run each time Wait passes with no new
// notification. A run executes on the loop goroutine, so runs never
// overlap; notifications arriving during a run start a fresh wait once it
// returns.
type Debouncer struct {
	Wait    time.Duration
	Initial time.Duration
}

// Loop blocks until ctx is done.
func (d Debouncer) Loop(ctx context.Context, changes <-chan struct{}, run func(context.Context)) {
	initial := time.NewTimer(d.Initial)
	defer initial.Stop()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-initial.C:
			run(ctx)
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if timer == nil {
				timer = time.NewTimer(d.Wait)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d.Wait)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			run(ctx)
		}
	}
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
