package rate

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketFirstWaitIsImmediate(t *testing.T) {
	tb := NewTokenBucket(1)
	defer tb.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait must not block: %v", err)
	}
}

func TestTokenBucketHonorsCancellation(t *testing.T) {
	tb := NewTokenBucket(1)
	defer tb.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	cancel()
	// Token drained and context canceled: Wait must return promptly.
	if err := tb.Wait(ctx); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestNoneNeverBlocks(t *testing.T) {
	if err := (None{}).Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
