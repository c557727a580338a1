package cache

import (
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 60)
	if err != nil {
		t.Fatal(err)
	}

	key := Key("42", 5, "diff --git a/x b/x")
	if _, ok := c.Get(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Put(key, "## Summary\nLooks fine."); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got != "## Summary\nLooks fine." {
		t.Errorf("Get = %q", got)
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 60)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("42", 5, "diff")
	if err := c.Put(key, "content"); err != nil {
		t.Fatalf("Put on disabled cache: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("disabled cache must always miss")
	}
}

func TestCache_Expiry(t *testing.T) {
	c, err := New(true, t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	c.ttl = time.Millisecond

	key := Key("42", 5, "diff")
	if err := c.Put(key, "content"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestKey_SensitiveToDiff(t *testing.T) {
	a := Key("42", 5, "diff-a")
	b := Key("42", 5, "diff-b")
	if a == b {
		t.Error("different diffs must produce different keys")
	}
	if a != Key("42", 5, "diff-a") {
		t.Error("key must be deterministic")
	}
}

func TestCache_Clear(t *testing.T) {
	c, err := New(true, t.TempDir(), 60)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("1", 1, "d")
	if err := c.Put(key, "x"); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after Clear")
	}
}
