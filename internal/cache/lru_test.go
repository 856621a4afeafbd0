package cache

import (
	"testing"
	"time"
)

func TestLRUSetGet(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get(missing) should be a miss")
	}
}

func TestLRUEvictsLeastRecent(t *testing.T) {
	c := NewLRU[string](2, time.Minute)

	c.Set("a", "A")
	c.Set("b", "B")
	c.Get("a") // a is now most recent
	c.Set("c", "C")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c should be present")
	}
}

func TestLRUUpdateExistingKey(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("Get(a) = %d; want 2", v)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry should be a miss")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() after expired Get = %d; want 0", c.Len())
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c := NewLRU[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired() = %d; want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("fresh entry should survive CleanExpired")
	}
}

func TestLRUDeleteAndPurge(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry should be a miss")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len() after Purge = %d; want 0", c.Len())
	}
}
