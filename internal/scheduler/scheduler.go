package scheduler

import (
	"context"
	"time"

	"jobagent-engine/internal/logging"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on every tick until ctx is done.
// Runs never overlap; a slow run delays the next one. Errors are logged.
func Every(ctx context.Context, interval time.Duration, name string, log *logging.Logger, task Task) {
	if log == nil {
		log = logging.Nop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			log.Warn("task failed", "task", name, "err", err)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
