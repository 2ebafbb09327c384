package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("10.0.0.1")
		if !allowed {
			t.Fatalf("request %d blocked, limit is 3", i+1)
		}
	}

	allowed, retry := rl.Allow("10.0.0.1")
	if allowed {
		t.Error("fourth request allowed, want blocked")
	}
	if retry != time.Minute {
		t.Errorf("retry-after = %v, want %v", retry, time.Minute)
	}
}

func TestFixedWindowLimiterIsolatesClients(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)

	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Fatal("first client blocked on first request")
	}
	if allowed, _ := rl.Allow("10.0.0.2"); !allowed {
		t.Error("second client blocked by first client's count")
	}
	if allowed, _ := rl.Allow("10.0.0.1"); allowed {
		t.Error("first client allowed past its limit")
	}
}

func TestFixedWindowLimiterResets(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 25*time.Millisecond)

	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Fatal("first request blocked")
	}
	if allowed, _ := rl.Allow("10.0.0.1"); allowed {
		t.Fatal("second request in window allowed")
	}

	time.Sleep(60 * time.Millisecond)

	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Error("request after window reset blocked")
	}
}
