package otp

import (
	"context"
	"testing"
	"time"
)

func TestConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "5550100001", "123456", time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ok, err := store.Consume(ctx, "5550100001", "123456")
	if err != nil || !ok {
		t.Fatalf("expected first consume to succeed, got ok=%v err=%v", ok, err)
	}
	ok, err = store.Consume(ctx, "5550100001", "123456")
	if err != nil || ok {
		t.Fatalf("expected second consume to fail, got ok=%v err=%v", ok, err)
	}
}

func TestConsumeRejectsMismatchWithoutBurning(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "5550100002", "654321", time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ok, err := store.Consume(ctx, "5550100002", "000000")
	if err != nil || ok {
		t.Fatalf("expected mismatch to fail, got ok=%v err=%v", ok, err)
	}
	// The real code survives a failed attempt.
	ok, err = store.Consume(ctx, "5550100002", "654321")
	if err != nil || !ok {
		t.Fatalf("expected real code to still work, got ok=%v err=%v", ok, err)
	}
}

func TestConsumeHonorsTTL(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Save(ctx, "5550100003", "111111", -time.Second); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	ok, err := store.Consume(ctx, "5550100003", "111111")
	if err != nil || ok {
		t.Fatalf("expected expired code to fail, got ok=%v err=%v", ok, err)
	}
}
