package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different provider should also work
	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	cancel()
	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "openai", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	duration := time.Since(start)
	if duration < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", duration)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	// First request ok
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst of 1 is consumed
	if limiter.Allow("OpenAI ") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Different provider should be allowed
	if !limiter.Allow("ollama") {
		t.Errorf("expected allow for other provider")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("ollama") {
			t.Fatalf("expected unlimited limiter to allow call %d", i)
		}
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default

	// Set strict limit for one provider
	limiter.SetRate("anthropic", 0.1, 1) // very slow

	// First request passes (burst 1)
	if !limiter.Allow("anthropic") {
		t.Errorf("first request should pass")
	}

	// Second request fails
	if limiter.Allow("anthropic") {
		t.Errorf("second request should fail")
	}

	// Other provider still fast
	if !limiter.Allow("openai") {
		t.Errorf("other provider should pass")
	}

	// Non-positive rate lifts the limit
	limiter.SetRate("anthropic", 0, 0)
	if !limiter.Allow("anthropic") {
		t.Errorf("expected unlimited rate after reset")
	}
}
