package services

import (
	"context"
	"sync"
	"time"
)

// ExpiryWatcher periodically evicts an expired session. It runs until Stop
// is called or the context passed to StartExpiryWatcher is cancelled.
type ExpiryWatcher struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// Interval returns the check period
func (w *ExpiryWatcher) Interval() time.Duration {
	return w.interval
}

// Stop halts the watcher and waits for its goroutine to exit. It is safe to
// call more than once.
func (w *ExpiryWatcher) Stop() {
	w.once.Do(func() { close(w.stop) })
	<-w.done
}

// Done is closed once the watcher has exited
func (w *ExpiryWatcher) Done() <-chan struct{} {
	return w.done
}

// StartExpiryWatcher starts checking the token every interval. A
// non-positive interval uses DefaultExpiryCheckInterval.
func (s *authServiceImpl) StartExpiryWatcher(ctx context.Context, interval time.Duration) *ExpiryWatcher {
	if interval <= 0 {
		interval = DefaultExpiryCheckInterval
	}

	w := &ExpiryWatcher{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(w.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				evicted, err := s.CheckExpiration(ctx)
				if err != nil {
					s.logger.Error("expiry check failed", "error", err)
				} else if evicted {
					s.logger.Info("expired session evicted by watcher")
				}
			}
		}
	}()

	s.logger.Debug("expiry watcher started", "interval", interval)
	return w
}
