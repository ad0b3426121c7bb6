package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFixedWindowQuota(t *testing.T) {
	fw := NewFixedWindow(5, time.Hour)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		allowed, err := fw.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("submission %d should be allowed", i)
		}
	}

	allowed, err := fw.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("6th submission within the window should be denied")
	}
}

func TestFixedWindowKeysIndependent(t *testing.T) {
	fw := NewFixedWindow(1, time.Hour)
	ctx := context.Background()

	if ok, _ := fw.Allow(ctx, "1.1.1.1"); !ok {
		t.Fatal("first key should be allowed")
	}
	if ok, _ := fw.Allow(ctx, "2.2.2.2"); !ok {
		t.Fatal("second key should be allowed independently")
	}
	if ok, _ := fw.Allow(ctx, "1.1.1.1"); ok {
		t.Fatal("first key should be over quota")
	}
}

func TestFixedWindowReset(t *testing.T) {
	fw := NewFixedWindow(2, time.Hour)
	current := time.Now()
	fw.now = func() time.Time { return current }
	ctx := context.Background()

	fw.Allow(ctx, "9.9.9.9")
	fw.Allow(ctx, "9.9.9.9")
	if ok, _ := fw.Allow(ctx, "9.9.9.9"); ok {
		t.Fatal("expected denial over quota")
	}

	current = current.Add(time.Hour + time.Minute)
	if ok, _ := fw.Allow(ctx, "9.9.9.9"); !ok {
		t.Fatal("expected a fresh window after expiry")
	}
}
