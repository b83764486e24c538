package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("set and get", func(t *testing.T) {
		data := map[string]string{"foo": "bar"}
		if err := m.Set(ctx, "test1", data, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		var result map[string]string
		if err := m.Get(ctx, "test1", &result); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if result["foo"] != "bar" {
			t.Errorf("expected bar, got: %s", result["foo"])
		}
	})

	t.Run("get nonexistent", func(t *testing.T) {
		var result string
		if err := m.Get(ctx, "nonexistent", &result); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("exists", func(t *testing.T) {
		m.SetTTL(ctx, "exists-test", "value", time.Hour)

		exists, err := m.Exists(ctx, "exists-test")
		if err != nil || !exists {
			t.Fatalf("expected key to exist, got %t (%v)", exists, err)
		}
		exists, _ = m.Exists(ctx, "nonexistent")
		if exists {
			t.Error("expected nonexistent key to be absent")
		}
	})

	t.Run("delete", func(t *testing.T) {
		m.SetTTL(ctx, "delete-test", "value", 0)
		m.Delete(ctx, "delete-test")
		if exists, _ := m.Exists(ctx, "delete-test"); exists {
			t.Error("expected key to be deleted")
		}
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }

	if err := m.SetTTL(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var v int
	if err := m.Get(ctx, "k", &v); err != nil || v != 1 {
		t.Fatalf("get before expiry: %d (%v)", v, err)
	}
	now = now.Add(2 * time.Minute)
	if err := m.Get(ctx, "k", &v); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if exists, _ := m.Exists(ctx, "k"); exists {
		t.Fatalf("expired key reported as existing")
	}
}

func TestMemoryStoreNoExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }
	m.SetTTL(ctx, "k", "v", 0)
	now = now.Add(24 * 365 * time.Hour)
	if exists, _ := m.Exists(ctx, "k"); !exists {
		t.Fatalf("key without ttl should not expire")
	}
}
