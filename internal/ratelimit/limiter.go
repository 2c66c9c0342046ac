// Package ratelimit spaces out requests to a throttled host.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between consecutive requests to one
// throttled host. Hosts are matched by substring; requests to any other host
// pass through untouched.
//
// The last-request timestamp is stamped before the request is issued, while
// the lock is held, so request starts across all workers are serialized at
// the configured interval. The critical section is short; contention on the
// lock is expected.
type Limiter struct {
	host     string
	interval time.Duration

	mu   sync.Mutex
	last time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a limiter for hosts containing host. An empty host or a
// non-positive interval disables throttling.
func New(host string, interval time.Duration) *Limiter {
	return &Limiter{
		host:     host,
		interval: interval,
		now:      time.Now,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}
}

// Wait blocks until a request to rawURL may start. It returns immediately
// for URLs outside the throttled host.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if !l.matches(rawURL) {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if deficit := l.interval - l.now().Sub(l.last); deficit > 0 {
			if err := l.sleep(ctx, deficit); err != nil {
				return err
			}
		}
	}

	l.last = l.now()
	return nil
}

// matches reports whether rawURL targets the throttled host.
func (l *Limiter) matches(rawURL string) bool {
	if l.host == "" || l.interval <= 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.Contains(rawURL, l.host)
	}
	return strings.Contains(u.Host, l.host)
}
