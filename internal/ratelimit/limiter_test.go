package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestWait_EnforcesInterval(t *testing.T) {
	const interval = 20 * time.Millisecond
	l := New("cdn.example.com", interval)
	ctx := context.Background()

	var starts []time.Time
	for i := 0; i < 4; i++ {
		if err := l.Wait(ctx, "https://cdn.example.com/img.png"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		starts = append(starts, time.Now())
	}

	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < interval {
			t.Errorf("gap between request %d and %d = %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestWait_ConcurrentRequestsSerialized(t *testing.T) {
	const interval = 10 * time.Millisecond
	l := New("cdn.example.com", interval)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		starts []time.Time
		wg     sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(ctx, "https://cdn.example.com/img.png"); err != nil {
				t.Errorf("Wait() error = %v", err)
				return
			}
			now := time.Now()
			mu.Lock()
			starts = append(starts, now)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		// Allow a hair of scheduling slack between Wait returning and the
		// timestamp being taken.
		if gap := starts[i].Sub(starts[i-1]); gap < interval-2*time.Millisecond {
			t.Errorf("gap between start %d and %d = %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestWait_OtherHostsUnthrottled(t *testing.T) {
	l := New("cdn.example.com", time.Minute)
	var slept bool
	l.sleep = func(ctx context.Context, d time.Duration) error {
		slept = true
		return nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx, "https://other.example.org/a.png"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if slept {
		t.Error("Wait() slept for a host outside the throttled domain")
	}
}

func TestWait_SubstringHostMatch(t *testing.T) {
	l := New("example.com", time.Minute)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/a.png", true},
		{"https://example.com/a.png", true},
		{"https://example.org/a.png", false},
		{"https://unrelated.net/example.com.png", false}, // path, not host
	}
	for _, tt := range tests {
		if got := l.matches(tt.url); got != tt.want {
			t.Errorf("matches(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestWait_CancelledWhileSleeping(t *testing.T) {
	l := New("cdn.example.com", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	// First call stamps the timestamp without sleeping.
	if err := l.Wait(ctx, "https://cdn.example.com/a.png"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	cancel()
	if err := l.Wait(ctx, "https://cdn.example.com/b.png"); err != context.Canceled {
		t.Errorf("Wait() after cancel = %v, want context.Canceled", err)
	}
}
