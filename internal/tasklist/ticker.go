package tasklist

import (
	"context"
	"sync"
	"time"
)

// DefaultTick is the countdown refresh interval.
const DefaultTick = time.Second

// StartTicker calls fn with the controller's current time every interval
// until stop is called or ctx is done. fn runs on the ticker goroutine and
// must not call stop. Once stop returns, fn is not called again.
func (c *Controller) StartTicker(ctx context.Context, interval time.Duration, fn func(now time.Time)) (stop func()) {
	if interval <= 0 {
		interval = DefaultTick
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// A tick and a cancel can be ready together.
				if ctx.Err() != nil {
					return
				}
				fn(c.now())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
