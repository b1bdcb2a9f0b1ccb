package session

import (
	"context"
	"time"
)

// Run calls c.Tick for every value received on ticks. It returns when ctx is
// cancelled or the session is Submitted. The caller owns the tick source.
func Run(ctx context.Context, c *Controller, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Done():
			return
		case <-ticks:
			c.Tick(ctx)
		}
	}
}

// Timer is the recurring schedule that drives one Controller.
type Timer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartTimer ticks c once per interval until the session ends or Stop is called.
func StartTimer(parent context.Context, c *Controller, interval time.Duration) *Timer {
	ctx, cancel := context.WithCancel(parent)
	t := &Timer{cancel: cancel, done: make(chan struct{})}

	ticker := time.NewTicker(interval)
	go func() {
		defer close(t.done)
		defer ticker.Stop()
		Run(ctx, c, ticker.C)
	}()

	return t
}

// Stop cancels the schedule and waits for the tick loop to exit.
// It must not be called from inside the controller's Sink.
func (t *Timer) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed once the tick loop has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
